package utils

import "testing"

func TestEndpoint(t *testing.T) {
	val := "localhost:2222"
	e, err := NewEndpoint(val)
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != val {
		t.Fail()
	}

	if (e.Host != "localhost") || (e.Port != 2222) {
		t.Fail()
	}

	if _, err := NewEndpoint("host:notaport"); err == nil {
		t.Fatal("bad port accepted")
	}
}
