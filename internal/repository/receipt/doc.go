// Package receipt persists install receipts as a JSON file under the install
// root. The installer appends or replaces a receipt after each successful
// install and the inventory service reads them back; the file is advisory
// state, the versioned directories on disk remain the source of truth.
package receipt
