package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/spark-core/internal/errors"
)

func TestMap_Codes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", svcErr.Validation("actor must differ from target"), codes.InvalidArgument},
		{"forbidden", svcErr.Forbidden("not a participant"), codes.PermissionDenied},
		{"quota", fmt.Errorf("send: %w", svcErr.ErrQuotaExceeded), codes.ResourceExhausted},
		{"funds", svcErr.ErrInsufficientFunds, codes.FailedPrecondition},
		{"gorm not found", gorm.ErrRecordNotFound, codes.NotFound},
		{"not found", svcErr.NotFound("conversation 9"), codes.NotFound},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"transient", svcErr.Transient("insert message", stderrors.New("disk full")), codes.Unavailable},
		{"fatal", svcErr.Fatal("two matches for pair 1:2"), codes.Internal},
		{"unknown", stderrors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, ok := status.FromError(svcErr.Map(tc.err))
			assert.True(t, ok)
			assert.Equal(t, tc.code, st.Code())
		})
	}
	assert.Nil(t, svcErr.Map(nil))
}

func TestMap_QuotaMessageIsStable(t *testing.T) {
	st, _ := status.FromError(svcErr.Map(fmt.Errorf("conversation 4: %w", svcErr.ErrQuotaExceeded)))
	assert.Equal(t, "quota_exceeded", st.Message())
}

func TestTransient_KeepsDomainErrors(t *testing.T) {
	err := svcErr.Transient("debit", svcErr.ErrInsufficientFunds)
	assert.ErrorIs(t, err, svcErr.ErrInsufficientFunds)
	assert.NotErrorIs(t, err, svcErr.ErrTransient)

	err = svcErr.Transient("debit", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)

	err = svcErr.Transient("debit", stderrors.New("connection reset"))
	assert.ErrorIs(t, err, svcErr.ErrTransient)
	assert.Nil(t, svcErr.Transient("noop", nil))
}
