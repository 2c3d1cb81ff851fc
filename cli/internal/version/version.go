// Package version reports the CLI build and checks database server
// versions against the minimums the SQL dialects rely on.
package version

import (
	"fmt"
	"runtime"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

var (
	// Version is the version of the CLI
	Version = "0.1.0"
	// BuildDate is the build date
	BuildDate = "unknown"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info holds version information
type Info struct {
	Version   string `json:"version" yaml:"version"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns version information
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("migrate-go version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns a detailed version string
func (i Info) FullString() string {
	return fmt.Sprintf(`migrate-go version %s
Build Date: %s
Git Commit: %s
Platform: %s
Go Version: %s`, i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion)
}

// Newer reports whether latest is a newer release than current
func Newer(current, latest string) (bool, error) {
	c, err := goversion.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("invalid version format: %w", err)
	}
	l, err := goversion.NewVersion(latest)
	if err != nil {
		return false, fmt.Errorf("invalid latest version format: %w", err)
	}
	return c.LessThan(l), nil
}

// ServerQuery returns the statement that reads the server version
func ServerQuery(provider string) string {
	switch provider {
	case "mssql":
		return "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))"
	case "mysql":
		return "SELECT VERSION()"
	case "postgres":
		return "SHOW server_version"
	case "sqlite":
		return "SELECT sqlite_version()"
	}
	return ""
}

// minimums lists the oldest servers whose syntax the dialects emit:
// RENAME COLUMN on MySQL and SQLite, identity columns on PostgreSQL and
// DATETIMEOFFSET on SQL Server.
var minimums = map[string]string{
	"mssql":    ">= 10.0",
	"mysql":    ">= 8.0",
	"postgres": ">= 10",
	"sqlite":   ">= 3.25",
}

// CheckServer returns an error when the raw server version reported by
// the database is older than the provider's minimum.
func CheckServer(provider, raw string) error {
	constraint, ok := minimums[provider]
	if !ok {
		return nil
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return fmt.Errorf("empty %s server version", provider)
	}
	v, err := goversion.NewVersion(fields[0])
	if err != nil {
		return fmt.Errorf("invalid %s server version %q: %w", provider, raw, err)
	}
	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return err
	}
	// prerelease suffixes such as "-0ubuntu0.22.04" must not fail the check
	core := v.Core()
	if !c.Check(core) {
		return fmt.Errorf("%s server %s does not satisfy %s", provider, core, constraint)
	}
	return nil
}
