// Package toolchain holds the domain model of the provisioner: dotted
// release versions with their MAJOR.MINOR side-by-side installation keys,
// release artifact URL rendering, and install receipts.
package toolchain
