package course_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/okian/courses/internal/domain/course"
	"github.com/smartystreets/goconvey/convey"
)

// decodeBody mirrors how the HTTP layer reads request bodies.
func decodeBody(raw string) map[string]any {
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		panic(err)
	}
	return m
}

func TestValidateID(t *testing.T) {
	convey.Convey("Given raw path ids", t, func() {
		convey.Convey("When the id is a positive integer", func() {
			id, issues := course.ValidateID("101")
			convey.So(issues, convey.ShouldBeNil)
			convey.So(id, convey.ShouldEqual, 101)
		})

		convey.Convey("When the id has an integral decimal form", func() {
			id, issues := course.ValidateID("101.0")
			convey.So(issues, convey.ShouldBeNil)
			convey.So(id, convey.ShouldEqual, 101)
		})

		convey.Convey("When the id is not numeric", func() {
			_, issues := course.ValidateID("abc")
			convey.So(issues, convey.ShouldNotBeEmpty)
			convey.So(issues.First(), convey.ShouldEqual, "courseId must be an integer")
			convey.So(issues[0].Field, convey.ShouldEqual, "courseId")
		})

		convey.Convey("When the id is empty or fractional", func() {
			_, issues := course.ValidateID("")
			convey.So(issues, convey.ShouldNotBeEmpty)
			_, issues = course.ValidateID("1.5")
			convey.So(issues, convey.ShouldNotBeEmpty)
		})

		convey.Convey("When the id is beyond the integer range", func() {
			_, issues := course.ValidateID("1e30")
			convey.So(issues.First(), convey.ShouldEqual, "courseId must be an integer")
			_, issues = course.ValidateID("10000000000000000000")
			convey.So(issues.First(), convey.ShouldEqual, "courseId must be an integer")
		})

		convey.Convey("When the id is zero or negative", func() {
			_, issues := course.ValidateID("0")
			convey.So(issues.First(), convey.ShouldEqual, "courseId must be greater than 0")
			_, issues = course.ValidateID("-4")
			convey.So(issues, convey.ShouldNotBeEmpty)
		})
	})
}

func TestValidatePost(t *testing.T) {
	convey.Convey("Given create bodies", t, func() {
		convey.Convey("When the body has courseId and name", func() {
			c, issues := course.ValidatePost(decodeBody(`{"courseId":101,"name":"Systems"}`))

			convey.Convey("Then it is accepted with a normalised id", func() {
				convey.So(issues, convey.ShouldBeNil)
				convey.So(c, convey.ShouldResemble, course.Course{"courseId": 101, "name": "Systems"})
			})
		})

		convey.Convey("When the body carries optional and unknown fields", func() {
			c, issues := course.ValidatePost(decodeBody(
				`{"courseId":7,"name":"OS","credits":3.0,"instructors":["Ann"],"room":"B101"}`))

			convey.Convey("Then known fields are typed and unknown fields kept", func() {
				convey.So(issues, convey.ShouldBeNil)
				convey.So(c["credits"], convey.ShouldEqual, 3)
				convey.So(c["instructors"], convey.ShouldResemble, []string{"Ann"})
				convey.So(c["room"], convey.ShouldEqual, "B101")
			})
		})

		convey.Convey("When courseId is missing", func() {
			_, issues := course.ValidatePost(decodeBody(`{"name":"Systems"}`))
			convey.So(issues.First(), convey.ShouldEqual, "courseId is required")
		})

		convey.Convey("When keys differ from the field names only by case", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseid":5,"name":"x"}`))
			convey.So(issues.First(), convey.ShouldEqual, "courseId is required")
			_, issues = course.ValidatePost(decodeBody(`{"courseId":5,"NAME":"x"}`))
			convey.So(issues.First(), convey.ShouldEqual, "name is required")
		})

		convey.Convey("When courseId overflows an int", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":1e19,"name":"X"}`))
			convey.So(issues.First(), convey.ShouldEqual, "courseId must be an integer")
		})

		convey.Convey("When name is missing", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":5}`))
			convey.So(issues.First(), convey.ShouldEqual, "name is required")
		})

		convey.Convey("When courseId is a string", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":"5","name":"X"}`))
			convey.So(issues.First(), convey.ShouldEqual, "courseId must be an integer")
		})

		convey.Convey("When name is a number", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":5,"name":12}`))
			convey.So(issues.First(), convey.ShouldEqual, "name must be a string")
		})

		convey.Convey("When name is empty", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":5,"name":""}`))
			convey.So(issues.First(), convey.ShouldEqual, "name must be at least 1 characters")
		})

		convey.Convey("When credits are out of range", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":5,"name":"X","credits":13}`))
			convey.So(issues.First(), convey.ShouldEqual, "credits must be at most 12")
		})

		convey.Convey("When instructors is not an array", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":5,"name":"X","instructors":"Ann"}`))
			convey.So(issues.First(), convey.ShouldEqual, "instructors must be an array")
		})

		convey.Convey("When a known field is null", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":5,"name":null}`))
			convey.So(issues.First(), convey.ShouldEqual, "name must not be null")
		})

		convey.Convey("When several fields are wrong", func() {
			_, issues := course.ValidatePost(decodeBody(`{"courseId":"x","name":1}`))

			convey.Convey("Then issues come in schema field order", func() {
				convey.So(len(issues), convey.ShouldEqual, 2)
				convey.So(issues[0].Field, convey.ShouldEqual, "courseId")
				convey.So(issues[1].Field, convey.ShouldEqual, "name")
				convey.So(issues.Error(), convey.ShouldContainSubstring, "; ")
			})
		})

		convey.Convey("When the body is nil", func() {
			convey.So(func() { _, _ = course.ValidatePost(nil) }, convey.ShouldNotPanic)
			_, issues := course.ValidatePost(nil)
			convey.So(issues, convey.ShouldNotBeEmpty)
		})
	})
}

func TestValidatePut(t *testing.T) {
	convey.Convey("Given update bodies", t, func() {
		convey.Convey("When only courseId and one field are sent", func() {
			patch, issues := course.ValidatePut(decodeBody(`{"courseId":101,"credits":3}`))

			convey.Convey("Then the patch carries only those fields", func() {
				convey.So(issues, convey.ShouldBeNil)
				convey.So(patch, convey.ShouldResemble, course.Course{"courseId": 101, "credits": 3})
			})
		})

		convey.Convey("When credits is explicitly zero", func() {
			patch, issues := course.ValidatePut(decodeBody(`{"courseId":1,"credits":0}`))
			convey.So(issues, convey.ShouldBeNil)
			convey.So(patch["credits"], convey.ShouldEqual, 0)
		})

		convey.Convey("When name is present but empty", func() {
			_, issues := course.ValidatePut(decodeBody(`{"courseId":1,"name":""}`))
			convey.So(issues.First(), convey.ShouldEqual, "name must be at least 1 characters")
		})

		convey.Convey("When credits is negative", func() {
			_, issues := course.ValidatePut(decodeBody(`{"courseId":1,"credits":-1}`))
			convey.So(issues.First(), convey.ShouldEqual, "credits must be at least 0")
		})

		convey.Convey("When a known field is sent with different case", func() {
			patch, issues := course.ValidatePut(decodeBody(`{"courseId":5,"Credits":4}`))

			convey.Convey("Then it is kept as an unknown field", func() {
				convey.So(issues, convey.ShouldBeNil)
				convey.So(patch, convey.ShouldResemble, course.Course{"courseId": 5, "Credits": json.Number("4")})
			})
		})

		convey.Convey("When courseId is missing", func() {
			_, issues := course.ValidatePut(decodeBody(`{"credits":3}`))
			convey.So(issues.First(), convey.ShouldEqual, "courseId is required")
		})
	})
}

func TestValidateDelete(t *testing.T) {
	convey.Convey("Given delete bodies", t, func() {
		convey.Convey("When courseId is present", func() {
			id, issues := course.ValidateDelete(decodeBody(`{"courseId":101}`))
			convey.So(issues, convey.ShouldBeNil)
			convey.So(id, convey.ShouldEqual, 101)
		})

		convey.Convey("When courseId is missing", func() {
			_, issues := course.ValidateDelete(decodeBody(`{}`))
			convey.So(issues.First(), convey.ShouldEqual, "courseId is required")
		})

		convey.Convey("When courseId is fractional", func() {
			_, issues := course.ValidateDelete(decodeBody(`{"courseId":1.25}`))
			convey.So(issues.First(), convey.ShouldEqual, "courseId must be an integer")
		})
	})
}
