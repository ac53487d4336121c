package client

import (
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
)

// ErrSessionExpired is returned when a request was rejected for its token and
// the session could not be refreshed. The session has been cleared.
var ErrSessionExpired = errors.New("client: session expired, log in again")

// Doer sends one request. *fasthttp.Client satisfies it.
type Doer interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *fasthttp.Request, resp *fasthttp.Response) error

func (f DoerFunc) Do(req *fasthttp.Request, resp *fasthttp.Response) error {
	return f(req, resp)
}

// RefreshFunc exchanges a refresh token for a new access token.
type RefreshFunc func(refreshToken string) (string, error)

// WithAuthRetry attaches the session's bearer token to every request. When
// the server answers 401 or 403 it refreshes the access token once and sends
// the request one more time. If there is no refresh token or the server
// rejects the refresh, the session is cleared, onAuthFailure runs and
// ErrSessionExpired is returned. A transport failure during refresh leaves the
// session intact. A retried request is never retried again.
func WithAuthRetry(next Doer, session *Session, refresh RefreshFunc, onAuthFailure func()) Doer {
	return DoerFunc(func(req *fasthttp.Request, resp *fasthttp.Response) error {
		setBearer(req, session.AccessToken())
		if err := next.Do(req, resp); err != nil {
			return err
		}
		if !authRejected(resp.StatusCode()) {
			return nil
		}

		refreshToken := session.RefreshToken()
		if refreshToken == "" {
			return expire(session, onAuthFailure)
		}
		access, err := refresh(refreshToken)
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr), err == nil && access == "":
			return expire(session, onAuthFailure)
		case err != nil:
			return err
		}
		if err := session.SetAccessToken(access); err != nil {
			return err
		}

		setBearer(req, access)
		resp.Reset()
		return next.Do(req, resp)
	})
}

func authRejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func setBearer(req *fasthttp.Request, token string) {
	if token == "" {
		req.Header.Del(fasthttp.HeaderAuthorization)
		return
	}
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
}

func expire(session *Session, onAuthFailure func()) error {
	if err := session.Clear(); err != nil {
		return errors.Join(ErrSessionExpired, err)
	}
	if onAuthFailure != nil {
		onAuthFailure()
	}
	return ErrSessionExpired
}
