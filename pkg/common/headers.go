package common

import "mime"

// Media types SCIM endpoints exchange, RFC 7644 section 3.1. Providers
// predating the SCIM media type registration answer with plain JSON.
const (
	ContentTypeSCIM = "application/scim+json"
	ContentTypeJSON = "application/json"
)

const (
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"
	HeaderLocation    = "Location"
	HeaderETag        = "ETag"
)

// AcceptableContentType reports whether a Content-Type header value denotes
// a SCIM JSON payload. Media type parameters such as charset are ignored.
func AcceptableContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}

	return mediaType == ContentTypeSCIM || mediaType == ContentTypeJSON
}
