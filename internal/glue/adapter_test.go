package glue

import (
	"errors"
	"testing"

	"gluec/internal/artifact"
	"gluec/internal/host"
)

func bannerPlan() *artifact.GluePlan {
	return &artifact.GluePlan{
		Events: []artifact.EventSpec{
			{
				Unit: "SSH::Banner", Hook: "%done", Event: "ssh::banner",
				Args: []string{"$conn", "$is_orig", "self.version", "self.software"},
			},
			{
				Unit: "SSH::Banner", Hook: "software", Event: "ssh::software",
				Args: []string{"self.software"},
			},
			{
				Unit: "SSH::Banner", Hook: "%error", Event: "ssh::error",
				Args: []string{"$conn", "$error"},
			},
			{
				Unit: "SSH::Banner", Hook: "%error", Event: "ssh::failed",
				Args: []string{"$conn"},
			},
		},
	}
}

func bannerRecord() *host.Record {
	return &host.Record{
		Unit: "SSH::Banner",
		Fields: []host.RecordField{
			{Name: "version", Value: host.BytesVal([]byte("2.0"))},
			{Name: "software", Value: host.BytesVal([]byte("OpenSSH_9.6"))},
		},
	}
}

func testConn() *host.Connection {
	return &host.Connection{
		ID:   "CtestConn1",
		Orig: host.Endpoint{Addr: "10.0.0.1", Port: 40000},
		Resp: host.Endpoint{Addr: "10.0.0.2", Port: 22},
	}
}

func TestAdapterDoneRaisesDeclaredArgsInOrder(t *testing.T) {
	a, err := NewAdapter(bannerPlan())
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	ctx := &DispatchContext{Record: bannerRecord(), Conn: testConn(), IsOrig: true}
	if err := a.Done(rec, "SSH::Banner", ctx); err != nil {
		t.Fatal(err)
	}

	events := rec.Named("ssh::banner")
	if len(events) != 1 {
		t.Fatalf("events = %+v", rec.Events)
	}
	args := events[0].Args
	if len(args) != 4 {
		t.Fatalf("args = %+v", args)
	}
	if args[0].Kind != host.KindConn || args[0].Conn.ID != "CtestConn1" {
		t.Errorf("arg 0 = %+v", args[0])
	}
	if args[1].Kind != host.KindBool || !args[1].Bool {
		t.Errorf("arg 1 = %+v", args[1])
	}
	if args[2].Str != "2.0" || args[3].Str != "OpenSSH_9.6" {
		t.Errorf("field args = %q, %q", args[2].Str, args[3].Str)
	}
}

func TestAdapterFieldHook(t *testing.T) {
	a, err := NewAdapter(bannerPlan())
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	ctx := &DispatchContext{Record: bannerRecord()}
	if err := a.Field(rec, "SSH::Banner", "software", ctx); err != nil {
		t.Fatal(err)
	}
	events := rec.Named("ssh::software")
	if len(events) != 1 || events[0].Args[0].Str != "OpenSSH_9.6" {
		t.Fatalf("events = %+v", rec.Events)
	}
	// the %done binding must not fire on a field hook
	if len(rec.Named("ssh::banner")) != 0 {
		t.Errorf("field hook fired the %%done event")
	}
}

func TestAdapterErrorHookWithMessage(t *testing.T) {
	a, err := NewAdapter(bannerPlan())
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	ctx := &DispatchContext{Conn: testConn(), ErrorMsg: "truncated input"}
	if err := a.Error(rec, "SSH::Banner", ctx); err != nil {
		t.Fatal(err)
	}

	withMsg := rec.Named("ssh::error")
	if len(withMsg) != 1 || withMsg[0].Args[1].Str != "truncated input" {
		t.Fatalf("ssh::error = %+v", withMsg)
	}
	// the overload without $error fires as well
	if len(rec.Named("ssh::failed")) != 1 {
		t.Fatalf("ssh::failed missing: %+v", rec.Events)
	}
}

func TestAdapterErrorHookPlaceholderMessage(t *testing.T) {
	a, err := NewAdapter(bannerPlan())
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	if err := a.Error(rec, "SSH::Banner", &DispatchContext{Conn: testConn()}); err != nil {
		t.Fatal(err)
	}
	events := rec.Named("ssh::error")
	if len(events) != 1 || events[0].Args[1].Str != NoErrorMessage {
		t.Fatalf("expected placeholder %q, got %+v", NoErrorMessage, events)
	}
}

func TestAdapterUnboundUnitIsNoop(t *testing.T) {
	a, err := NewAdapter(bannerPlan())
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	if err := a.Done(rec, "HTTP::Request", &DispatchContext{}); err != nil {
		t.Fatal(err)
	}
	if len(rec.Events) != 0 {
		t.Fatalf("events = %+v", rec.Events)
	}
}

func TestAdapterMissingContext(t *testing.T) {
	a, err := NewAdapter(bannerPlan())
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	// $conn declared but no connection in context
	err = a.Done(rec, "SSH::Banner", &DispatchContext{Record: bannerRecord()})
	if !errors.Is(err, ErrDispatch) {
		t.Fatalf("err = %v, want ErrDispatch", err)
	}
}

func TestAdapterMissingField(t *testing.T) {
	plan := &artifact.GluePlan{Events: []artifact.EventSpec{
		{Unit: "U::T", Hook: "%done", Event: "u::t", Args: []string{"self.gone"}},
	}}
	a, err := NewAdapter(plan)
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	err = a.Done(rec, "U::T", &DispatchContext{Record: &host.Record{Unit: "U::T"}})
	if !errors.Is(err, ErrDispatch) {
		t.Fatalf("err = %v, want ErrDispatch", err)
	}
}

func TestAdapterNestedFieldPath(t *testing.T) {
	plan := &artifact.GluePlan{Events: []artifact.EventSpec{
		{Unit: "M::Outer", Hook: "%done", Event: "m::deep", Args: []string{"self.inner.value"}},
	}}
	a, err := NewAdapter(plan)
	if err != nil {
		t.Fatal(err)
	}
	inner := &host.Record{Unit: "M::Inner", Fields: []host.RecordField{
		{Name: "value", Value: host.UintVal(7)},
	}}
	outer := &host.Record{Unit: "M::Outer", Fields: []host.RecordField{
		{Name: "inner", Value: host.RecordVal(inner)},
	}}
	rec := &host.Recorder{}
	if err := a.Done(rec, "M::Outer", &DispatchContext{Record: outer}); err != nil {
		t.Fatal(err)
	}
	events := rec.Named("m::deep")
	if len(events) != 1 || events[0].Args[0].Uint != 7 {
		t.Fatalf("events = %+v", rec.Events)
	}
}

func TestAdapterLiteralArgs(t *testing.T) {
	plan := &artifact.GluePlan{Events: []artifact.EventSpec{
		{Unit: "A::B", Hook: "%done", Event: "a::b", Args: []string{`"tag"`, "-3"}},
	}}
	a, err := NewAdapter(plan)
	if err != nil {
		t.Fatal(err)
	}
	rec := &host.Recorder{}
	if err := a.Done(rec, "A::B", &DispatchContext{}); err != nil {
		t.Fatal(err)
	}
	args := rec.Events[0].Args
	if args[0].Str != "tag" || args[1].Int != -3 {
		t.Fatalf("args = %+v", args)
	}
}

func TestAdapterRejectsBadArgExpression(t *testing.T) {
	plan := &artifact.GluePlan{Events: []artifact.EventSpec{
		{Unit: "A::B", Hook: "%done", Event: "a::b", Args: []string{"wat"}},
	}}
	if _, err := NewAdapter(plan); !errors.Is(err, ErrDispatch) {
		t.Fatalf("err = %v, want ErrDispatch", err)
	}
}
