// Package webfetch downloads web pages the way a desktop browser would.
//
// Requests go through a transport that presents a Chrome TLS fingerprint,
// are rate limited, carry a browser User-Agent and accept compressed
// responses, which are decoded before the body is handed back. The package
// also detects what a body contains (JSON, HTML, XML) and can pretty-print
// it for debugging dumps.
package webfetch
