package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// gate attaches the stored bearer credential to every outgoing request.
// No retry, no refresh-on-401.
type gate struct {
	tokens TokenSource
	next   http.RoundTripper
	log    logrus.FieldLogger
}

func (g *gate) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if g.tokens != nil {
		if tok := g.tokens.Token(); tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID := uuid.NewString()
	r.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := g.next.RoundTrip(r)

	fields := logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": reqID,
		"took":       time.Since(start).Round(time.Millisecond),
	}
	if err != nil {
		g.log.WithFields(fields).WithError(err).Debug("api request failed")
		return nil, err
	}
	fields["status"] = resp.StatusCode
	g.log.WithFields(fields).Debug("api request")
	return resp, nil
}
