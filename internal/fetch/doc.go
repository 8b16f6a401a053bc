/*
Package fetch performs outbound HTTP requests for the curl command.

Requests go through a resty client backed by a pooled retryablehttp
transport, a token bucket limiter and a circuit breaker. Redirects are only
followed when the request asks for it, up to a configured maximum.

Response bodies may be saved into the virtual filesystem through the Writer
interface; OutputName derives a file name from the URL for curl -O.
*/
package fetch
