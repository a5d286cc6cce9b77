// Package http exposes the OD mail generator over HTTP.
//
// The router exposes the following endpoints:
//   - POST /od/compute: resolves an OD request. Body: {"event":{...},"students":[...]}
//     using the JSON shape of application.ComputeParams. Response: application.ComputeResult
//     with the missed lectures per student, the rendered mail, a summary and warnings.
//   - POST /od/upload: same as /od/compute for a multipart xlsx upload in the `file` field.
//   - POST /od/report: same body as /od/compute; responds with an xlsx attachment.
//   - GET /od/template: downloads a blank upload workbook.
//   - GET /timetable: the merged timetable in canonical JSON. The `ETag` header carries the
//     timetable fingerprint and a matching `If-None-Match` yields 304 Not Modified.
//   - GET /healthz: liveness probe returning {"status":"ok"}.
//
// Every request is tagged with a request ID taken from `X-Request-ID` or generated,
// echoed in the response and attached to the request logger.
package http
