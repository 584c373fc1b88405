package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
)

type stubLogger struct{}

func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}

type fakeProvisioner struct {
	errs  []error
	calls int
}

func (f *fakeProvisioner) Ensure(context.Context, *entity.OutputBindingConfig) (entity.ProvisionResult, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return entity.ProvisionCreated, nil
}

type published struct {
	key, value any
	headers    map[string]string
}

type fakePublisher struct {
	err  error
	sent []published
}

func (f *fakePublisher) Publish(_ context.Context, key, value any, headers map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{key: key, value: value, headers: headers})
	return nil
}
func (f *fakePublisher) Close() {}

type fakeDecoder struct{ err error }

func (f fakeDecoder) Decode(line []byte) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return string(line), nil
}

func newService(p *fakeProvisioner, pub *fakePublisher, dec fakeDecoder) *OutputService {
	return NewOutputService(stubLogger{}, entity.NewOutputBindingConfig("b:9092", "orders"), p, pub, dec)
}

func TestBind_ProvisionsOnce(t *testing.T) {
	p := &fakeProvisioner{}
	svc := newService(p, &fakePublisher{}, fakeDecoder{})
	require.NoError(t, svc.Bind(context.Background()))
	require.NoError(t, svc.Bind(context.Background()))
	require.Equal(t, 1, p.calls)
}

func TestBind_RetriesAfterFailure(t *testing.T) {
	p := &fakeProvisioner{errs: []error{apperr.NewProvisionErr("no brokers", nil)}}
	svc := newService(p, &fakePublisher{}, fakeDecoder{})

	err := svc.Bind(context.Background())
	var pe *apperr.ProvisionErr
	require.ErrorAs(t, err, &pe)

	require.NoError(t, svc.Bind(context.Background()))
	require.Equal(t, 2, p.calls)
}

func TestBind_NilBinding(t *testing.T) {
	svc := NewOutputService(stubLogger{}, nil, &fakeProvisioner{}, &fakePublisher{}, fakeDecoder{})
	var ia *apperr.InvalidArgErr
	require.ErrorAs(t, svc.Bind(context.Background()), &ia)
}

func TestEmit(t *testing.T) {
	cases := []struct {
		name    string
		bind    bool
		pubErr  error
		errAs   any
		wantErr bool
	}{
		{name: "published", bind: true},
		{name: "not bound", bind: false, wantErr: true, errAs: new(*apperr.InvalidArgErr)},
		{name: "typed error kept", bind: true, pubErr: apperr.NewPublishErr("down", nil), wantErr: true, errAs: new(*apperr.PublishErr)},
		{name: "plain error wrapped", bind: true, pubErr: errors.New("boom"), wantErr: true, errAs: new(*apperr.InternalErr)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			pub := &fakePublisher{err: tc.pubErr}
			svc := newService(&fakeProvisioner{}, pub, fakeDecoder{})
			if tc.bind {
				require.NoError(t, svc.Bind(context.Background()))
			}
			err := svc.Emit(context.Background(), int64(1), "v", map[string]string{"h": "1"})
			if tc.wantErr {
				require.ErrorAs(t, err, tc.errAs)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []published{{key: int64(1), value: "v", headers: map[string]string{"h": "1"}}}, pub.sent)
		})
	}
}

func TestEmit_CanceledContext(t *testing.T) {
	svc := newService(&fakeProvisioner{}, &fakePublisher{}, fakeDecoder{})
	require.NoError(t, svc.Bind(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, svc.Emit(ctx, nil, "v", nil), context.Canceled)
}

func TestHandleLine(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(&fakeProvisioner{}, pub, fakeDecoder{})
	require.NoError(t, svc.Bind(context.Background()))

	require.NoError(t, svc.HandleLine(context.Background(), []byte("first")))
	require.NoError(t, svc.HandleLine(context.Background(), []byte("second")))
	require.Len(t, pub.sent, 2)
	require.Nil(t, pub.sent[1].key)
	require.Equal(t, "second", pub.sent[1].value)
	require.Equal(t, "2", pub.sent[1].headers[HeaderSourceLine])
}

func TestHandleLine_DecodeError(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(&fakeProvisioner{}, pub, fakeDecoder{err: apperr.NewInvalidArgErr("bad json", nil)})
	require.NoError(t, svc.Bind(context.Background()))

	var ia *apperr.InvalidArgErr
	require.ErrorAs(t, svc.HandleLine(context.Background(), []byte("x")), &ia)
	require.Empty(t, pub.sent)
}
