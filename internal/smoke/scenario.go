package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/courses/pkg/logger"
)

// ErrUnexpected marks a response that did not match the expected contract.
var ErrUnexpected = errors.New("unexpected response")

type step struct {
	name    string
	method  string
	path    string // appended to the courses URL
	body    any
	status  int
	message string
	check   func(*Envelope) error
}

// runScenario walks one course through create, conflict, read, update and
// delete, asserting the status and message of each step.
func runScenario(ctx context.Context, cfg *Config, client *HTTPClient, stats *Stats) error {
	id := cfg.BaseID
	sid := strconv.Itoa(id)
	base := cfg.Prefix + "/courses"

	steps := []step{
		{
			name: "course absent before run", method: http.MethodGet, path: "/" + sid,
			status: http.StatusNotFound, message: "Course does not exist",
		},
		{
			name: "create", method: http.MethodPost,
			body:   map[string]any{"courseId": id, "name": "Smoke Test Course"},
			status: http.StatusCreated, message: "Course " + sid + " has been added successfully",
			check: expectLink(base),
		},
		{
			name: "duplicate create", method: http.MethodPost,
			body:   map[string]any{"courseId": id, "name": "Smoke Test Course"},
			status: http.StatusConflict, message: "Course Id already exists",
		},
		{
			name: "read", method: http.MethodGet, path: "/" + sid,
			status: http.StatusOK, message: "Get course " + sid + " successfully",
			check: all(expectLink(base+"/"+sid), expectField("name", "Smoke Test Course")),
		},
		{
			name: "invalid id", method: http.MethodGet, path: "/not-a-number",
			status: http.StatusBadRequest, message: "Validation failed",
		},
		{
			name: "update", method: http.MethodPut,
			body:   map[string]any{"courseId": id, "credits": 4},
			status: http.StatusOK, message: "Course " + sid + " has been updated successfully",
			check: all(expectLink(base+"/"+sid), expectField("credits", float64(4)), expectField("name", "Smoke Test Course")),
		},
		{
			name: "delete", method: http.MethodDelete,
			body:   map[string]any{"courseId": id},
			status: http.StatusOK, message: "Course " + sid + " has been deleted successfully",
			check: expectAbsent(id),
		},
		{
			name: "read after delete", method: http.MethodGet, path: "/" + sid,
			status: http.StatusNotFound, message: "Course does not exist",
		},
		{
			name: "delete missing", method: http.MethodDelete,
			body:   map[string]any{"courseId": id},
			status: http.StatusNotFound, message: "Course Id does not exist",
		},
	}

	for _, st := range steps {
		env, err := client.Do(ctx, st.method, cfg.coursesURL()+st.path, st.body)
		if err != nil {
			return fmt.Errorf("step %q: %w", st.name, err)
		}
		if env.Status != st.status || env.Message != st.message {
			return fmt.Errorf("step %q: %w: got %d %q, want %d %q",
				st.name, ErrUnexpected, env.Status, env.Message, st.status, st.message)
		}
		if st.check != nil {
			if err := st.check(env); err != nil {
				return fmt.Errorf("step %q: %w", st.name, err)
			}
		}
		stats.ScenarioSteps++
		logger.Get().Debug(ctx, "scenario step passed", logger.String("step", st.name))
	}
	return nil
}

func all(checks ...func(*Envelope) error) func(*Envelope) error {
	return func(env *Envelope) error {
		for _, c := range checks {
			if err := c(env); err != nil {
				return err
			}
		}
		return nil
	}
}

func expectLink(want string) func(*Envelope) error {
	return func(env *Envelope) error {
		if env.Link != want {
			return fmt.Errorf("%w: Link %q, want %q", ErrUnexpected, env.Link, want)
		}
		return nil
	}
}

func expectField(key string, want any) func(*Envelope) error {
	return func(env *Envelope) error {
		data, ok := env.Data.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: data is not an object", ErrUnexpected)
		}
		if data[key] != want {
			return fmt.Errorf("%w: %s = %v, want %v", ErrUnexpected, key, data[key], want)
		}
		return nil
	}
}

func expectAbsent(id int) func(*Envelope) error {
	return func(env *Envelope) error {
		if env.Data != nil && env.Courses == nil {
			return fmt.Errorf("%w: data is not a list", ErrUnexpected)
		}
		for _, c := range env.Courses {
			if c["courseId"] == float64(id) {
				return fmt.Errorf("%w: course %d still listed", ErrUnexpected, id)
			}
		}
		return nil
	}
}
