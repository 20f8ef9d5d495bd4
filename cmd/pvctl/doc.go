// Command pvctl is the operator tool for PixelVault.
//
// It maps image ids between their numeric and public forms and runs the
// derivative pipeline on local files, reading the same ID_CODEC_* and IMAGE_*
// environment (or .env) as the server.
package main
