package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

type testLogger struct{}

func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}
func (testLogger) Debug(string, ...any) {}
func (testLogger) Trace(string, ...any) {}
func (testLogger) Fatal(string, ...any) {}

type fakeSR struct {
	nextID     int
	createErr  error
	compatErr  error
	created    []sr.Schema
	subjects   []string
	compatSets []sr.SetCompatibility
}

func (f *fakeSR) CreateSchema(_ context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error) {
	if f.createErr != nil {
		return sr.SubjectSchema{}, f.createErr
	}
	f.nextID++
	f.created = append(f.created, s)
	f.subjects = append(f.subjects, subject)
	return sr.SubjectSchema{Subject: subject, Version: 1, ID: f.nextID, Schema: s}, nil
}

func (f *fakeSR) SetCompatibility(_ context.Context, compat sr.SetCompatibility, subjects ...string) []sr.CompatibilityResult {
	f.compatSets = append(f.compatSets, compat)
	out := make([]sr.CompatibilityResult, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, sr.CompatibilityResult{Subject: s, Err: f.compatErr})
	}
	return out
}

func withFakeClient(t *testing.T, f *fakeSR) {
	t.Helper()
	old := newSRClient
	t.Cleanup(func() { newSRClient = old })
	newSRClient = func(...sr.ClientOpt) (srClient, error) { return f, nil }
}

func TestNewSchemaRegistry_InvalidConfig(t *testing.T) {
	v := validator.New()
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "no urls", cfg: Config{}},
		{name: "bad url", cfg: Config{URLs: []string{"not a url"}}},
		{name: "password without user", cfg: Config{URLs: []string{"http://localhost:8081"}, Password: "p"}},
		{name: "bad compatibility", cfg: Config{URLs: []string{"http://localhost:8081"}, Compatibility: "SOMETIMES"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSchemaRegistry(testLogger{}, tc.cfg, v)
			var ia *apperr.InvalidArgErr
			require.ErrorAs(t, err, &ia)
		})
	}
}

func TestSchemaRegistry_RegisterCachesIDs(t *testing.T) {
	f := &fakeSR{}
	withFakeClient(t, f)

	r, err := NewSchemaRegistry(testLogger{}, Config{URLs: []string{"http://localhost:8081"}}, validator.New())
	require.NoError(t, err)

	ctx := context.Background()
	id1, err := r.Register(ctx, "orders-value", `"string"`, entity.ValueKindSchemaRecord)
	require.NoError(t, err)
	id2, err := r.Register(ctx, "orders-value", `"string"`, entity.ValueKindSchemaRecord)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Len(t, f.created, 1)
	require.Equal(t, sr.TypeAvro, f.created[0].Type)

	id3, err := r.Register(ctx, "orders-value", `"long"`, entity.ValueKindSchemaRecord)
	require.NoError(t, err)
	require.NotEqual(t, id1, id3)
	require.Empty(t, f.compatSets)
}

func TestSchemaRegistry_ProtobufType(t *testing.T) {
	f := &fakeSR{}
	withFakeClient(t, f)
	r, err := NewSchemaRegistry(testLogger{}, Config{URLs: []string{"http://localhost:8081"}}, validator.New())
	require.NoError(t, err)

	_, err = r.Register(context.Background(), "events-value", `syntax = "proto3";`, entity.ValueKindProtoMessage)
	require.NoError(t, err)
	require.Equal(t, sr.TypeProtobuf, f.created[0].Type)

	_, err = r.Register(context.Background(), "events-value", "x", entity.ValueKindText)
	var ia *apperr.InvalidArgErr
	require.ErrorAs(t, err, &ia)
}

func TestSchemaRegistry_CompatibilityAppliedOncePerSubject(t *testing.T) {
	f := &fakeSR{}
	withFakeClient(t, f)
	r, err := NewSchemaRegistry(testLogger{}, Config{URLs: []string{"http://localhost:8081"}, Compatibility: "BACKWARD"}, validator.New())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = r.Register(ctx, "orders-value", `"string"`, entity.ValueKindSchemaRecord)
	require.NoError(t, err)
	_, err = r.Register(ctx, "orders-value", `"long"`, entity.ValueKindSchemaRecord)
	require.NoError(t, err)

	require.Len(t, f.compatSets, 1)
	require.Equal(t, sr.CompatBackward, f.compatSets[0].Level)
}

func TestSchemaRegistry_Errors(t *testing.T) {
	createErrs := metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentRegistry, "create_schema")
	compatErrs := metrics.App().ErrorsTotal.WithLabelValues(metrics.ComponentRegistry, "set_compatibility")
	createBefore, compatBefore := testutil.ToFloat64(createErrs), testutil.ToFloat64(compatErrs)

	f := &fakeSR{createErr: errors.New("409 conflict")}
	withFakeClient(t, f)
	r, err := NewSchemaRegistry(testLogger{}, Config{URLs: []string{"http://localhost:8081"}}, validator.New())
	require.NoError(t, err)

	_, err = r.Register(context.Background(), "orders-value", `"string"`, entity.ValueKindSchemaRecord)
	var ie *apperr.InternalErr
	require.ErrorAs(t, err, &ie)
	require.ErrorContains(t, err, "409 conflict")

	f2 := &fakeSR{compatErr: errors.New("forbidden")}
	withFakeClient(t, f2)
	r2, err := NewSchemaRegistry(testLogger{}, Config{URLs: []string{"http://localhost:8081"}, Compatibility: "FULL"}, validator.New())
	require.NoError(t, err)
	_, err = r2.Register(context.Background(), "orders-value", `"string"`, entity.ValueKindSchemaRecord)
	require.ErrorContains(t, err, "forbidden")
	require.Empty(t, f2.created)

	require.Equal(t, createBefore+1, testutil.ToFloat64(createErrs))
	require.Equal(t, compatBefore+1, testutil.ToFloat64(compatErrs))
}

func TestValueSubject(t *testing.T) {
	require.Equal(t, "orders-value", ValueSubject("orders"))
}
