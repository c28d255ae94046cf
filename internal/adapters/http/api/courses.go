package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	service "github.com/okian/courses/internal/app"
	"github.com/okian/courses/internal/domain/course"
	"github.com/okian/courses/pkg/logger"
	"github.com/okian/courses/pkg/metrics"
)

const (
	msgCourses          = "Courses Information"
	msgCourseMissing    = "Course does not exist"
	msgCourseIDMissing  = "Course Id does not exist"
	msgCourseIDConflict = "Course Id already exists"
)

// CoursesHandler serves CRUD on the course collection.
type CoursesHandler struct {
	deps    Dependencies
	base    string
	maxBody int64
	log     logger.Logger
}

// NewCoursesHandler creates a handler whose Link headers are rooted at base.
// Request bodies longer than maxBody bytes are rejected.
func NewCoursesHandler(deps Dependencies, base string, maxBody int64, log logger.Logger) *CoursesHandler {
	return &CoursesHandler{deps: deps, base: base, maxBody: maxBody, log: log}
}

// HandleList handles GET {base}.
func (h *CoursesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, msgCourses, h.deps.List(r.Context()))
}

// HandleGet handles GET {base}/{courseId}.
func (h *CoursesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, issues := course.ValidateID(chi.URLParam(r, course.FieldCourseID))
	if len(issues) > 0 {
		h.rejected(w, r, "courses.get", course.SchemaID, issues)
		return
	}

	c, err := h.deps.Get(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		h.fail(w, r, WrapKind("courses.get", ErrNotFound, err), msgCourseMissing)
		return
	case err != nil:
		h.fail(w, r, WrapKind("courses.get", ErrInternal, err), msgInternal)
		return
	}

	w.Header().Set("Link", h.link(id))
	writeOK(w, http.StatusOK, fmt.Sprintf("Get course %d successfully", id), c)
}

// HandleCreate handles POST {base}.
func (h *CoursesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r, h.maxBody)
	if err != nil {
		h.rejectedBody(w, r, "courses.create", course.SchemaPost, err)
		return
	}
	c, issues := course.ValidatePost(body)
	if len(issues) > 0 {
		h.rejected(w, r, "courses.create", course.SchemaPost, issues)
		return
	}
	id, _ := c.ID()

	created, err := h.deps.Create(r.Context(), c)
	switch {
	case errors.Is(err, service.ErrCourseExists):
		h.fail(w, r, WrapKind("courses.create", ErrConflict, err), msgCourseIDConflict)
		return
	case err != nil:
		h.fail(w, r, WrapKind("courses.create", ErrInternal, err), msgInternal)
		return
	}

	w.Header().Set("Link", h.base)
	writeOK(w, http.StatusCreated, fmt.Sprintf("Course %d has been added successfully", id), created)
}

// HandleUpdate handles PUT {base}. The body is merged into the stored record.
func (h *CoursesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r, h.maxBody)
	if err != nil {
		h.rejectedBody(w, r, "courses.update", course.SchemaPut, err)
		return
	}
	patch, issues := course.ValidatePut(body)
	if len(issues) > 0 {
		h.rejected(w, r, "courses.update", course.SchemaPut, issues)
		return
	}
	id, _ := patch.ID()

	merged, err := h.deps.Update(r.Context(), patch)
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		h.fail(w, r, WrapKind("courses.update", ErrNotFound, err), msgCourseIDMissing)
		return
	case err != nil:
		h.fail(w, r, WrapKind("courses.update", ErrInternal, err), msgInternal)
		return
	}

	w.Header().Set("Link", h.link(id))
	writeOK(w, http.StatusOK, fmt.Sprintf("Course %d has been updated successfully", id), merged)
}

// HandleDelete handles DELETE {base}; the id comes from the body.
func (h *CoursesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r, h.maxBody)
	if err != nil {
		h.rejectedBody(w, r, "courses.delete", course.SchemaDelete, err)
		return
	}
	id, issues := course.ValidateDelete(body)
	if len(issues) > 0 {
		h.rejected(w, r, "courses.delete", course.SchemaDelete, issues)
		return
	}

	remaining, err := h.deps.Delete(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		h.fail(w, r, WrapKind("courses.delete", ErrNotFound, err), msgCourseIDMissing)
		return
	case err != nil:
		h.fail(w, r, WrapKind("courses.delete", ErrInternal, err), msgInternal)
		return
	}

	writeOK(w, http.StatusOK, fmt.Sprintf("Course %d has been deleted successfully", id), remaining)
}

func (h *CoursesHandler) link(id int) string {
	return h.base + "/" + strconv.Itoa(id)
}

func (h *CoursesHandler) rejected(w http.ResponseWriter, r *http.Request, op, schema string, issues course.Issues) {
	metrics.RecordValidationFailure(schema)
	h.fail(w, r, WrapKind(op, ErrBadRequest, issues), issues.First())
}

func (h *CoursesHandler) rejectedBody(w http.ResponseWriter, r *http.Request, op, schema string, err error) {
	metrics.RecordValidationFailure(schema)
	h.fail(w, r, WrapKind(op, ErrBadRequest, err), err.Error())
}

// fail answers with the status err's kind maps to. message becomes the
// validation detail for bad requests and the envelope message otherwise.
func (h *CoursesHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "course request failed", logger.Error(err))
		writeInternal(w, err)
		return
	}

	h.log.Debug(r.Context(), "course request refused",
		logger.Error(err),
		logger.Int("status", status),
	)
	if status == http.StatusBadRequest {
		writeValidation(w, message)
		return
	}
	writeFail(w, status, message)
}

// statusFor maps an error kind to its response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
