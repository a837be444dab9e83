package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cabgo/rider-web/internal/session"
)

const (
	sessionKey        = "session"
	sessionQueryParam = "session"
)

// SessionMiddleware attaches the rider's session, creating one when the request carries
// none. The id is echoed in the response header. Websocket clients, which cannot set
// headers, may pass it as a query parameter.
func SessionMiddleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(session.HeaderName)
		if id == "" {
			id = c.Query(sessionQueryParam)
		}
		sess, _ := store.GetOrCreate(id)
		c.Header(session.HeaderName, sess.ID)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
