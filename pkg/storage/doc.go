// Package storage keeps files uploaded through site forms.
//
// Two backends implement Storage: Local writes below a directory and is
// the default, S3 talks to any S3-compatible service. Open picks one from
// the site's "storage" section:
//
//	storage:
//	  driver: s3
//	  s3:
//	    bucket: site-uploads
//	    access-key: "{{ env:S3_ACCESS_KEY }}"
//	    secret-key: "{{ env:S3_SECRET_KEY }}"
//
// Content types are sniffed from the data rather than trusted from the
// client. Rules such as MaxSize and AllowedTypes reject files before they
// are written; rejected files produce a *FileError.
package storage
