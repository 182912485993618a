package fetcher

import "github.com/nao1215/linkcrawl/internal/model"

// Outcome is the result of one fetch.
// Success carries Body, HTTPError carries Status, TransportError carries Err.
type Outcome struct {
	// Kind tags which variant this is.
	Kind model.OutcomeKind

	// URL is the requested URL.
	URL string

	// Status is the HTTP status code. Zero for transport errors.
	Status int

	// ContentType is the response Content-Type header of a successful fetch.
	ContentType string

	// Body is the response body of a successful fetch.
	Body []byte

	// Truncated is true when Body was cut at the configured size limit.
	Truncated bool

	// Err describes the failure: *model.HTTPStatusError or *model.TransportError.
	Err error
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Kind == model.OutcomeSuccess
}

// Success builds a successful outcome.
func Success(url, contentType string, body []byte, truncated bool) Outcome {
	return Outcome{
		Kind:        model.OutcomeSuccess,
		URL:         url,
		Status:      200,
		ContentType: contentType,
		Body:        body,
		Truncated:   truncated,
	}
}

// HTTPError builds an outcome for a non-200 response.
func HTTPError(url string, status int) Outcome {
	return Outcome{
		Kind:   model.OutcomeHTTPError,
		URL:    url,
		Status: status,
		Err:    &model.HTTPStatusError{URL: url, Status: status},
	}
}

// TransportError builds an outcome for a failure below the HTTP layer.
func TransportError(url string, cause error) Outcome {
	return Outcome{
		Kind: model.OutcomeTransportError,
		URL:  url,
		Err:  &model.TransportError{URL: url, Err: cause},
	}
}
