// SPDX-License-Identifier: GPL-2.0-or-later

package glctx

import (
	"fmt"
	"log"
	"testing"

	"glres/conlog"
	"glres/glh"
	"glres/glh/glhtest"
)

func TestCheckNotCurrent(t *testing.T) {
	c := New(glhtest.New())
	defer Detach()
	if err := c.Check(); err != ErrContextAffinity {
		t.Errorf("Check() before MakeCurrent = %v, want ErrContextAffinity", err)
	}
	if err := c.MakeCurrent(); err != nil {
		t.Fatalf("MakeCurrent() = %v", err)
	}
	if err := c.Check(); err != nil {
		t.Errorf("Check() after MakeCurrent = %v", err)
	}
}

func TestCheckTwoContexts(t *testing.T) {
	a := New(glhtest.New())
	b := New(glhtest.New())
	defer Detach()
	a.MakeCurrent()
	if err := b.Check(); err != ErrContextAffinity {
		t.Errorf("Check() on non-current context = %v, want ErrContextAffinity", err)
	}
	b.MakeCurrent()
	if err := a.Check(); err != ErrContextAffinity {
		t.Errorf("Check() on replaced context = %v, want ErrContextAffinity", err)
	}
}

func TestInvalidate(t *testing.T) {
	c := New(glhtest.New())
	defer Detach()
	c.MakeCurrent()
	c.Invalidate()
	if err := c.Check(); err != ErrContextInvalid {
		t.Errorf("Check() after Invalidate = %v, want ErrContextInvalid", err)
	}
	if err := c.MakeCurrent(); err != ErrContextInvalid {
		t.Errorf("MakeCurrent() after Invalidate = %v, want ErrContextInvalid", err)
	}
}

func TestReleaseOnContextThread(t *testing.T) {
	d := glhtest.New()
	c := New(d)
	defer Detach()
	c.MakeCurrent()
	buf := d.GenBuffer()
	c.Release(func(f glh.Funcs) { f.DeleteBuffer(buf) })
	if d.Live() != 0 {
		t.Errorf("%d live objects after Release", d.Live())
	}
}

func TestReleaseLogsDriverFailure(t *testing.T) {
	d := glhtest.New()
	c := New(d)
	defer Detach()
	c.MakeCurrent()
	buf := d.GenBuffer()
	d.FailNext(0x0502) // GL_INVALID_OPERATION
	logged := ""
	conlog.SetPrintf(func(format string, v ...interface{}) {
		logged = fmt.Sprintf(format, v...)
	})
	defer conlog.SetPrintf(log.Printf)
	c.Release(func(f glh.Funcs) { f.DeleteBuffer(buf) })
	if logged == "" {
		t.Errorf("driver failure during Release not logged")
	}
}

func TestReleaseDeadContext(t *testing.T) {
	d := glhtest.New()
	c := New(d)
	defer Detach()
	c.MakeCurrent()
	buf := d.GenBuffer()
	c.Invalidate()
	// the handle died with the context, no driver call may happen
	before := len(d.Calls)
	c.Release(func(f glh.Funcs) { f.DeleteBuffer(buf) })
	if got := len(d.Calls); got != before {
		t.Errorf("Release on dead context issued driver calls: %v", d.Calls[before:])
	}
}
