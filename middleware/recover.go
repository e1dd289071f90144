package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Recoverer turns a panic into a 500 carrying the panic message.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logrus.WithFields(logrus.Fields{
				"panic": rec,
				"path":  r.URL.Path,
			}).Errorf("Recovered from panic\n%s", debug.Stack())

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, MessageBody{
				Message: "Internal server error.",
				Error:   fmt.Sprint(rec),
			})
		}()
		next.ServeHTTP(w, r)
	})
}
