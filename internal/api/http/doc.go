// Package http exposes the virtual filesystem as a JSON API.
//
// Read operations are GET requests taking query parameters; mutations are
// POST requests with a JSON body. Filesystem errors map to status codes by
// kind:
//
//	not found                      404
//	already exists                 409
//	not a file / not a directory   409
//	invalid path or pattern        400
//	store failure                  502
//
// Example Usage:
//
//	h := http.NewHandlers(fs, metrics, logger)
//	h.Register(router)
package http
