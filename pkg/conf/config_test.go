package conf

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ferama/rexpect/pkg/script"
	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "login.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	want := &script.ExpectConf{
		Timeout:     30 * time.Second,
		MatchMax:    4096,
		RemoveNulls: true,
		FullBuffer:  true,
		LogUser:     true,
	}
	if diff := cmp.Diff(want, cfg.Expect); diff != "" {
		t.Fatalf("expect section mismatch (-want +got):\n%s", diff)
	}
	if cfg.SshClient == nil || !cfg.SshClient.Insecure {
		t.Fatal("sshclient section not loaded")
	}
	if cfg.Web == nil || cfg.Web.ListenAddress != "127.0.0.1:8090" {
		t.Fatal("web section not loaded")
	}
	if cfg.Parallel != 2 || len(cfg.Scripts) != 2 {
		t.Fatalf("parallel %d, %d scripts", cfg.Parallel, len(cfg.Scripts))
	}
	if cfg.Scripts[1].Name != "script-2" {
		t.Fatalf("unnamed script got %q", cfg.Scripts[1].Name)
	}

	step := cfg.Scripts[0].Steps[1]
	if *step.Expect.Timeout != 5*time.Second || *step.Expect.Cases[0].Glob != "*login: " {
		t.Fatal("expect step not decoded")
	}
	if !step.Expect.Cases[1].Timeout || step.Expect.Cases[1].Value != 2 {
		t.Fatal("timeout case not decoded")
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "minimal.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(script.DefaultExpectConf(), cfg.Expect); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.SshClient != nil || cfg.Web != nil {
		t.Fatal("optional sections should be nil")
	}
	if cfg.Parallel != 1 {
		t.Fail()
	}
}

func TestInvalidConfigs(t *testing.T) {
	for _, name := range []string{"no_scripts.yaml", "bad_step.yaml", "unknown_field.yaml", "not_exists.yaml"} {
		if _, err := LoadConfig(filepath.Join("testdata", name)); err == nil {
			t.Errorf("%s accepted", name)
		}
	}
}
