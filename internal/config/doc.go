// Package config defines the provisioner settings used by the commands and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the filesystem layout (install root, bin directory)
// and the product catalog: each catalog entry names a release artifact URL
// template, the entry point path inside the extracted archive, and the
// symlink base name published on the PATH. The built-in catalog covers
// PowerShell; additional products are declared in the settings file.
package config
