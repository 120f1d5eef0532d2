// Package google loads the OAuth client configuration used to talk to Google.
//
// The client configuration is the JSON document downloaded from the Google
// Cloud console ("web" or "installed" application). It is read from exactly one
// source: an inline JSON blob (GOOGLE_CLIENT_CONFIG_JSON) when set, otherwise
// a file on disk (client_secret.json by default).
package google
