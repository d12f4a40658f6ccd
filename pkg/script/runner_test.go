package script

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ferama/rexpect/pkg/expect"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func testEngine() *expect.Engine {
	conf := DefaultExpectConf()
	conf.Timeout = 5 * time.Second
	return expect.New(conf.EngineConfig(io.Discard))
}

func parseScript(t *testing.T, src string) *ScriptConf {
	t.Helper()
	var conf ScriptConf
	if err := yaml.Unmarshal([]byte(src), &conf); err != nil {
		t.Fatal(err)
	}
	return &conf
}

func TestRunnerLogin(t *testing.T) {
	conf := parseScript(t, `
name: login
steps:
  - popen: "printf 'login: '; read user; printf 'Password: '; read pw; echo \"welcome $user\""
    name: fake-login
  - expect:
      cases:
        - glob: "login: "
          value: 1
  - sendline: "bob"
  - expect:
      timeout: 2s
      cases:
        - exact: "denied"
          fail: true
        - exact: "Password: "
          send: "secret\r"
          value: 2
  - expect:
      cases:
        - exact: "welcome bob"
          value: 3
  - expect:
      cases:
        - eof: true
          value: 4
  - wait: true
`)
	r := NewRunner(conf, testEngine(), nil)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Value() != 4 || r.Last().Outcome != expect.EndOfFile {
		t.Fatalf("unexpected last value %d", r.Value())
	}
	if SessionRegistry().Len() != 0 {
		t.Fatal("sessions left in the registry")
	}
}

func TestRunnerContinue(t *testing.T) {
	conf := parseScript(t, `
name: continue
steps:
  - popen: "for i in 1 2 3; do printf 'more? '; read x; done; echo finished"
  - expect:
      cases:
        - exact: "more? "
          send: "y\r"
          continue: true
        - exact: "finished"
          value: 7
`)
	r := NewRunner(conf, testEngine(), nil)
	progress := []int{}
	r.OnStep(func(done int) { progress = append(progress, done) })
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Value() != 7 {
		t.Fatalf("got value %d", r.Value())
	}
	if diff := cmp.Diff([]int{1, 2}, progress); diff != "" || r.Steps() != 2 {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerFailingCase(t *testing.T) {
	conf := parseScript(t, `
name: fail
steps:
  - popen: "echo 'permission denied'"
  - expect:
      cases:
        - regexp: "[Dd]enied"
          fail: true
`)
	err := NewRunner(conf, testEngine(), nil).Run()
	if !errors.Is(err, ErrCaseFailed) {
		t.Fatalf("expected ErrCaseFailed, got %v", err)
	}
}

func TestRunnerUnhandledOutcomes(t *testing.T) {
	conf := parseScript(t, `
name: timeout
steps:
  - popen: "sleep 5"
  - expect:
      timeout: 100ms
      cases:
        - exact: "never"
`)
	err := NewRunner(conf, testEngine(), nil).Run()
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected a timeout error, got %v", err)
	}

	conf = parseScript(t, `
name: allowed
steps:
  - popen: "true"
  - expect:
      allow_eof: true
      cases:
        - exact: "never"
`)
	r := NewRunner(conf, testEngine(), nil)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Value() != expect.EndOfFile.Code() {
		t.Fatalf("got value %d", r.Value())
	}
}

func TestRunnerSeveralSessions(t *testing.T) {
	conf := parseScript(t, `
name: multi
steps:
  - popen: "sleep 0.3; echo slow"
    name: slow
  - popen: "echo fast; sleep 1"
    name: fast
  - expect:
      sessions: [slow, fast]
      cases:
        - exact: "slow"
          value: 1
        - exact: "fast"
          value: 2
  - use: slow
  - expect:
      cases:
        - exact: "slow"
          value: 3
  - close: true
`)
	r := NewRunner(conf, testEngine(), nil)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Value() != 3 {
		t.Fatalf("got value %d", r.Value())
	}
}

func TestStepValidate(t *testing.T) {
	bad := []string{
		`{}`,
		`{popen: "x", send: "y"}`,
		`{expect: {cases: []}}`,
		`{expect: {cases: [{exact: "a", glob: "b"}]}}`,
		`{expect: {cases: [{eof: true, continue: true}]}}`,
	}
	for _, src := range bad {
		var s Step
		if err := yaml.Unmarshal([]byte(src), &s); err != nil {
			t.Fatal(err)
		}
		if err := s.Validate(); err == nil {
			t.Errorf("%s accepted", src)
		}
	}

	var s Step
	yaml.Unmarshal([]byte(`{expect: {cases: [{null: true}, {timeout: true}]}}`), &s)
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestRemoteStepWithoutClient(t *testing.T) {
	conf := parseScript(t, `
name: remote
steps:
  - remote: "uptime"
`)
	if err := NewRunner(conf, testEngine(), nil).Run(); err == nil {
		t.Fatal("remote step accepted without a client")
	}
}

func TestRemoteStepUsesSpawner(t *testing.T) {
	conf := parseScript(t, `
name: remote
steps:
  - remote: "echo remote"
    name: box
  - expect:
      cases:
        - exact: "remote"
          value: 5
`)
	called := ""
	spawner := func(e *expect.Engine, command, name string) (*expect.Session, error) {
		called = name
		return e.Popen(command, &expect.SpawnOptions{Name: name})
	}
	r := NewRunner(conf, testEngine(), spawner)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if called != "box" || r.Value() != 5 {
		t.Fatalf("spawner called with %q, value %d", called, r.Value())
	}
}

func TestRunnerSessionOverrides(t *testing.T) {
	conf := parseScript(t, `
name: overrides
steps:
  - popen: "printf 'abcdefgh'; sleep 5"
    match_max: 4
    full_buffer: true
  - expect:
      cases:
        - exact: "zz"
`)
	err := NewRunner(conf, testEngine(), nil).Run()
	if err == nil || !strings.Contains(err.Error(), "full_buffer") {
		t.Fatalf("expected a full buffer error, got %v", err)
	}

	conf = parseScript(t, `
name: overrides
steps:
  - popen: "sleep 5"
    timeout: 100ms
  - expect:
      cases:
        - exact: "never"
        - timeout: true
          value: 9
`)
	start := time.Now()
	r := NewRunner(conf, testEngine(), nil)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Value() != 9 || time.Since(start) > 3*time.Second {
		t.Fatalf("got value %d after %s", r.Value(), time.Since(start))
	}
}
