package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResultStructuredCount(t *testing.T) {
	res := decodeResult(`{"total_results": 0, "restaurants": []}`, false)
	require.NotNil(t, res.TotalResults)
	assert.Equal(t, 0, *res.TotalResults)
	assert.True(t, res.Empty())

	res = decodeResult(`{"total_results": 12, "restaurants": [{"name": "Dominos"}]}`, false)
	require.NotNil(t, res.TotalResults)
	assert.Equal(t, 12, *res.TotalResults)
	assert.False(t, res.Empty())
}

func TestDecodeResultSentinelFallback(t *testing.T) {
	// Non-JSON payload embedding the legacy sentinel.
	res := decodeResult(`search done: {"total_results": 0} nothing found`, false)
	assert.Nil(t, res.TotalResults)
	assert.True(t, res.Empty())

	res = decodeResult("plain text with no counts", false)
	assert.False(t, res.Empty())
}

func TestSavedAddresses(t *testing.T) {
	svc := &Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*Result, error) {
			assert.Equal(t, ToolSavedAddresses, name)
			return &Result{Text: `{"addresses": [{"short_name": "Home", "lat": 22.3, "lng": 73.2}, {"short_name": "Work"}]}`}, nil
		},
	}

	locs, err := SavedAddresses(context.Background(), svc)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Home", locs[0].Name)
	assert.Equal(t, 22.3, locs[0].Raw["lat"])
}

func TestSavedAddressesMalformed(t *testing.T) {
	svc := &Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*Result, error) {
			return &Result{Text: "not json"}, nil
		},
	}

	_, err := SavedAddresses(context.Background(), svc)
	assert.Error(t, err)
}

func TestSavedAddressesEmpty(t *testing.T) {
	svc := &Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*Result, error) {
			return &Result{Text: `{"addresses": []}`}, nil
		},
	}

	locs, err := SavedAddresses(context.Background(), svc)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestBindPhoneStripsCountryPrefix(t *testing.T) {
	svc := &Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*Result, error) {
			assert.Equal(t, ToolBindPhone, name)
			assert.Equal(t, "9898989898", args["phone"])
			assert.Equal(t, 91, args["country_code"])
			return &Result{Text: "OTP sent"}, nil
		},
	}

	status, err := BindPhone(context.Background(), svc, 91, "+919898989898")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent", status)
}

func TestVerifyPhone(t *testing.T) {
	svc := &Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*Result, error) {
			assert.Equal(t, "1234", args["otp"])
			return &Result{Text: "Verification successful"}, nil
		},
	}

	bound, text, err := VerifyPhone(context.Background(), svc, "1234")
	require.NoError(t, err)
	assert.True(t, bound)
	assert.Contains(t, text, "successful")
}

func TestVerifyPhoneFailure(t *testing.T) {
	svc := &Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*Result, error) {
			return &Result{Text: "Invalid OTP"}, nil
		},
	}

	bound, _, err := VerifyPhone(context.Background(), svc, "0000")
	require.NoError(t, err)
	assert.False(t, bound)
}

func TestVerifyPhoneTransportError(t *testing.T) {
	svc := &Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*Result, error) {
			return nil, errors.New("connection reset")
		},
	}

	_, _, err := VerifyPhone(context.Background(), svc, "1234")
	assert.Error(t, err)
}
