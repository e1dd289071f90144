package drawings

import (
	"encoding/json"
	"errors"
	"excaliapp/core"
	"excaliapp/middleware"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Notifier is told about every drawing that was written or removed.
type Notifier interface {
	DrawingChanged(owner, id string, deleted bool)
}

type nopNotifier struct{}

func (nopNotifier) DrawingChanged(string, string, bool) {}

var validate = validator.New(validator.WithRequiredStructEnabled())

// saveBody is the PUT payload. Omitted optional fields keep stored values on update.
type saveBody struct {
	ID        string `json:"id" validate:"required,max=256,excludesall=/\\,ne=.,ne=.."`
	Name      string `json:"name"`
	Data      string `json:"data" validate:"required"`
	Thumbnail string `json:"thumbnail"`
	IsPublic  *bool  `json:"isPublic"`
}

func caller(w http.ResponseWriter, r *http.Request) (*core.Identity, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, middleware.Message("Unauthorized"))
		return nil, false
	}
	return identity, true
}

// validationMessage names the first problem of a rejected PUT body.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() == "ID" && fe.Tag() != "required" {
				return "Invalid file ID."
			}
		}
	}
	return "File ID, name and data are required."
}

func storeError(w http.ResponseWriter, r *http.Request, err error, fields logrus.Fields) {
	if errors.Is(err, core.ErrBadRequest) {
		logrus.WithFields(fields).WithError(err).Debug("Drawing store refused request")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, middleware.Message(err.Error()))
		return
	}
	logrus.WithFields(fields).WithError(err).Error("Drawing store failed")
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, middleware.Message(err.Error()))
}

func HandleList(repo core.DrawingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := caller(w, r)
		if !ok {
			return
		}

		list, err := repo.List(r.Context(), identity.Email)
		if err != nil {
			storeError(w, r, err, logrus.Fields{"user_id": identity.Email})
			return
		}

		files := make(map[string]*core.Drawing, len(list))
		for _, d := range list {
			files[d.ID] = d
		}
		render.JSON(w, r, files)
	}
}

func HandleGet(repo core.DrawingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := caller(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")

		d, err := repo.Get(r.Context(), identity.Email, id)
		if errors.Is(err, core.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, middleware.Message("File not found."))
			return
		}
		if err != nil {
			storeError(w, r, err, logrus.Fields{"user_id": identity.Email, "drawing_id": id})
			return
		}
		render.JSON(w, r, d)
	}
}

// HandleSave inserts or updates. The existence check and the write are two
// separate repository calls; a racing insert of the same id fails in Create.
func HandleSave(repo core.DrawingRepository, notifier Notifier) http.HandlerFunc {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := caller(w, r)
		if !ok {
			return
		}

		var body saveBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, middleware.Message("Invalid request body."))
			return
		}
		if err := validate.Struct(body); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, middleware.Message(validationMessage(err)))
			return
		}

		fields := logrus.Fields{"user_id": identity.Email, "drawing_id": body.ID}
		existing, err := repo.Lookup(r.Context(), body.ID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			d := newDrawing(identity.Email, body)
			if err := repo.Create(r.Context(), d); err != nil {
				storeError(w, r, err, fields)
				return
			}
			logrus.WithFields(fields).Info("Drawing created")
			notifier.DrawingChanged(d.UserID, d.ID, false)
			render.Status(r, http.StatusCreated)
			render.JSON(w, r, d)
		case err != nil:
			storeError(w, r, err, fields)
		case existing.UserID != identity.Email:
			logrus.WithFields(fields).Warn("Refused write to foreign drawing")
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, middleware.Message("You do not have permission to edit this file."))
		default:
			merge(existing, body)
			if err := repo.Update(r.Context(), existing); err != nil {
				storeError(w, r, err, fields)
				return
			}
			logrus.WithFields(fields).Debug("Drawing updated")
			notifier.DrawingChanged(existing.UserID, existing.ID, false)
			render.JSON(w, r, existing)
		}
	}
}

func newDrawing(owner string, body saveBody) *core.Drawing {
	now := core.Touch(time.Time{})
	name := body.Name
	if name == "" {
		name = core.DefaultName
	}
	return &core.Drawing{
		ID:        body.ID,
		UserID:    owner,
		Name:      name,
		Data:      body.Data,
		Thumbnail: body.Thumbnail,
		CreatedAt: now,
		UpdatedAt: now,
		IsPublic:  body.IsPublic != nil && *body.IsPublic,
	}
}

func merge(d *core.Drawing, body saveBody) {
	if body.Name != "" {
		d.Name = body.Name
	}
	if body.Data != "" {
		d.Data = body.Data
	}
	if body.Thumbnail != "" {
		d.Thumbnail = body.Thumbnail
	}
	if body.IsPublic != nil {
		d.IsPublic = *body.IsPublic
	}
	d.UpdatedAt = core.Touch(d.UpdatedAt)
}

func HandleDelete(repo core.DrawingRepository, notifier Notifier) http.HandlerFunc {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := caller(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		fields := logrus.Fields{"user_id": identity.Email, "drawing_id": id}

		if _, err := repo.Get(r.Context(), identity.Email, id); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, middleware.Message("File not found."))
				return
			}
			storeError(w, r, err, fields)
			return
		}

		if err := repo.Delete(r.Context(), identity.Email, id); err != nil {
			storeError(w, r, err, fields)
			return
		}
		logrus.WithFields(fields).Info("Drawing deleted")
		notifier.DrawingChanged(identity.Email, id, true)
		render.JSON(w, r, middleware.Message("File deleted successfully."))
	}
}
