package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/courses/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
				convey.So(cfg.APIPrefix, convey.ShouldEqual, "/api/v2")
				convey.So(cfg.Identity.StudentID, convey.ShouldEqual, "670612122")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("COURSES_ADDR", ":8080")
			_ = os.Setenv("COURSES_API_PREFIX", "/api/v3")
			_ = os.Setenv("COURSES_LOG_FORMAT", "json")
			_ = os.Setenv("COURSES_READ_TIMEOUT_MS", "2500")
			_ = os.Setenv("COURSES_ALLOWED_ORIGINS", "https://a.example, https://b.example")
			_ = os.Setenv("COURSES_IDENTITY__SECTION", "802")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIPrefix, convey.ShouldEqual, "/api/v3")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ReadTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
				convey.So(cfg.Identity.Section, convey.ShouldEqual, "802")
				convey.So(cfg.Identity.Program, convey.ShouldEqual, "CPE")
			})
		})

		convey.Convey("When metrics settings come from the environment", func() {
			_ = os.Setenv("COURSES_METRICS__NAMESPACE", "shop")
			_ = os.Setenv("COURSES_METRICS__PREFIX", "v2")
			_ = os.Setenv("COURSES_METRICS__ENABLED", "false")
			_ = os.Setenv("COURSES_METRICS__BUCKETS_MS", "1, 5,10")
			_ = os.Setenv("COURSES_METRICS__LABELS__ENV", "test")
			_ = os.Setenv("COURSES_MAX_BODY_BYTES", "2048")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the metrics section is populated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "shop")
				convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "catalog")
				convey.So(cfg.Metrics.Prefix, convey.ShouldEqual, "v2")
				convey.So(cfg.Metrics.Enabled, convey.ShouldBeFalse)
				convey.So(cfg.Metrics.BucketsMS, convey.ShouldResemble, []float64{1, 5, 10})
				convey.So(cfg.Metrics.Labels, convey.ShouldResemble, map[string]string{"env": "test"})
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 2048)
			})
		})

		convey.Convey("When the body limit or refresh interval is not positive", func() {
			_ = os.Setenv("COURSES_MAX_BODY_BYTES", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "max_body_bytes")

			_ = os.Unsetenv("COURSES_MAX_BODY_BYTES")
			_ = os.Setenv("COURSES_METRICS__REFRESH_INTERVAL_MS", "0")
			_, err = config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "refresh_interval_ms")
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
service_name: "catalog"
identity:
  first_name: "Ada"
seed_courses:
  - courseId: 261497
    name: "Full Stack Development"
    credits: 3
  - courseId: 261207
    name: "Basic Computer Engineering Lab"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COURSES_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ServiceName, convey.ShouldEqual, "catalog")
				convey.So(cfg.Identity.FirstName, convey.ShouldEqual, "Ada")
				convey.So(cfg.Identity.LastName, convey.ShouldEqual, "Chunlahawanit")
				convey.So(cfg.APIPrefix, convey.ShouldEqual, "/api/v2")
				convey.So(len(cfg.SeedCourses), convey.ShouldEqual, 2)
				convey.So(cfg.SeedCourses[0]["name"], convey.ShouldEqual, "Full Stack Development")
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nlog_level: debug\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COURSES_CONFIG", tmpFile)
			_ = os.Setenv("COURSES_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COURSES_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("COURSES_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("COURSES_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the api prefix is malformed", func() {
			_ = os.Setenv("COURSES_API_PREFIX", "api/v2")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "api_prefix must start with /")

			_ = os.Setenv("COURSES_API_PREFIX", "/api/v2/")
			_, err = config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "must not end with /")
		})

		convey.Convey("When a numeric environment variable is invalid", func() {
			_ = os.Setenv("COURSES_WRITE_TIMEOUT_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a timeout is negative", func() {
			_ = os.Setenv("COURSES_SHUTDOWN_TIMEOUT_MS", "-1")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.
func clearConfigEnvVars() {
	envVars := []string{
		"COURSES_CONFIG",
		"COURSES_ADDR",
		"COURSES_API_PREFIX",
		"COURSES_LOG_LEVEL",
		"COURSES_LOG_FORMAT",
		"COURSES_READ_TIMEOUT_MS",
		"COURSES_WRITE_TIMEOUT_MS",
		"COURSES_SHUTDOWN_TIMEOUT_MS",
		"COURSES_ALLOWED_ORIGINS",
		"COURSES_IDENTITY__SECTION",
		"COURSES_MAX_BODY_BYTES",
		"COURSES_METRICS__NAMESPACE",
		"COURSES_METRICS__PREFIX",
		"COURSES_METRICS__ENABLED",
		"COURSES_METRICS__BUCKETS_MS",
		"COURSES_METRICS__LABELS__ENV",
		"COURSES_METRICS__REFRESH_INTERVAL_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "courses-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
