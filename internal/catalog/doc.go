// Package catalog is the client of the remote campaign catalog.
//
// The catalog exposes two endpoints:
//
//	GET  /api/campaigns                 list destinations (campaigns)
//	POST /api/prospects/from-extension  submit a profile record
//
// A submitted body is the profile record's JSON fields plus "campaignId".
// Non-success responses may carry {"error": "..."}; the message is surfaced
// through *APIError. Authentication failures also match ErrUnauthorized and
// transport failures match ErrUnreachable.
package catalog
