// Package http provides HTTP handlers and middleware for the mentorship
// scheduler API.
//
// The router exposes the following endpoints:
//   - POST /projects/{projectID}/groups: creates a single-rule group and its
//     sessions. Body: groupRequest in group_handler.go.
//   - POST /projects/{projectID}/groups/batch: creates one group per weekday in
//     `weekdays`. Answers 201 when every day succeeded, 207 with per-day errors
//     when some failed, and the first failure's status when none succeeded.
//   - GET /projects/{projectID}/groups/{groupID}: group detail with rules.
//   - POST /projects/{projectID}/groups/{groupID}/rules: appends a rule.
//   - GET /sessions?group_id=&project_id=&from=&to=: calendar listing with the
//     resolved status of every session.
//   - POST /projects/{projectID}/groups/{groupID}/sessions/{sessionID}/complete,
//     .../missed and .../cancel: record a session outcome. Body: {"notes"}.
//     Sessions that already have an outcome answer 409.
//   - GET /attendance, POST /attendance, POST /attendance/{id}/confirm: list,
//     log and confirm attendance records.
//   - GET /attendance/summary: aggregated hours for the same filters as
//     GET /attendance.
//   - POST /attendance/sweep: generates attendance for elapsed sessions.
//   - GET /healthz: pings the configured stores.
//
// Validation failures answer 422 with field errors keyed by JSON name.
// Request/response DTOs live alongside their respective handlers.
package http
