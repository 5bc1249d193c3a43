package notebook

import (
	"net/url"
	"strings"
)

const FormEncodedMIME = "application/x-www-form-urlencoded"

// SetQueryField sets a field in provider query data of the form
// "<mime>,<form-encoded body>". data may be a bare MIME type, in which case a
// new body is started.
func SetQueryField(data, field, value string) string {
	mime, body, _ := strings.Cut(data, ",")
	if mime == "" {
		mime = FormEncodedMIME
	}
	values, err := url.ParseQuery(body)
	if err != nil {
		values = url.Values{}
	}
	values.Set(field, value)
	return mime + "," + values.Encode()
}

// QueryField reads a field back from form-encoded query data.
func QueryField(data, field string) (string, bool) {
	mime, body, ok := strings.Cut(data, ",")
	if !ok || !strings.EqualFold(mime, FormEncodedMIME) {
		return "", false
	}
	values, err := url.ParseQuery(body)
	if err != nil || !values.Has(field) {
		return "", false
	}
	return values.Get(field), true
}
