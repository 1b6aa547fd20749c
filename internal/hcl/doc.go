// Package hcl provides the concrete HCL implementation of config.Loader.
// It is responsible for all file parsing, HCL-to-model translation, and
// CTY-to-Go data binding.
package hcl
