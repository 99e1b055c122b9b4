// Package api provides the HTTP client and endpoint methods for the document
// search service.
//
// # Overview
//
// Two layers:
//
//   - client.go, errors.go: Client sends requests under a fixed base URL and
//     applies the same interception to every call.
//   - endpoints.go, types.go: Endpoints turns application intents (list tags,
//     search, fetch detail, log in) into single Client calls; the Decode*
//     helpers read the payloads the views need.
//
// # Request phase
//
// Before sending, the Client runs its request hooks in order:
//
//	bearerAuth       Authorization: Bearer <token> when the TokenSource has one
//	standardHeaders  Accept, User-Agent
//	requestID        X-Request-ID: <uuid v4>
//	caller hooks     anything added with WithRequestHook
//
// The token is read on every request, so logging in or out in another
// terminal takes effect on the next call.
//
// # Response phase
//
// A 2xx answer comes back as *Response with the body fully read and nothing
// else touched. Every other outcome is classified into exactly one Kind:
//
//	401                         KindAuthExpired        登录已过期，请重新登录
//	>= 500                      KindServerError        服务器错误，请稍后再试
//	other status                KindRequestRejected    server "message"/"detail" or 请求失败
//	sent, no response           KindNetworkUnreachable 网络错误，请检查连接
//	could not build or send     KindRequestMalformed   请求配置错误
//
// The classification has two outputs. The message goes to the Notifier (the
// shared notify.Center in docdesk) and the *Error goes back to the caller, who
// can still branch on it:
//
//	resp, err := endpoints.GetPdfDetail(ctx, id)
//	if errors.Is(err, api.ErrAuthExpired) {
//		// send the user to login
//	}
//
// Client timeouts (10s by default) are network failures; Error.Timeout
// distinguishes them. Nothing in this package retries.
//
// # Endpoints
//
//	GET  /api/documentapi/taglist              GetNewsTags
//	GET  /api/tagapi/tags/                     GetTags
//	GET  /api/documentapi/list                 SearchDocList
//	GET  /api/documentapi/documents/{id}       GetPdfDetail
//	POST /api/documentapi/es_search_related    SearchRelated
//	GET  /api/documentapi/default_search       DefaultSearch
//	POST /api/auth/token                       Login
//
// SearchDocList sends tags comma joined (taglist=a,b, empty when none).
// SearchRelated is the only search that sends a JSON body instead of a query.
package api
