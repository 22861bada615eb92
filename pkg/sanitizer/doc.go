// Package sanitizer cleans HTML with bluemonday policies.
//
// Three policies are built in: strict (plain text), safe (basic formatting
// for visitor input) and content (markup editors use in pages). The sanitize
// decorator and the form binder select them by name through Policy.
package sanitizer
