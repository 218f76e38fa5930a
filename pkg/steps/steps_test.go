package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(calls *[]string, name string, err error) func(context.Context) error {
	return func(context.Context) error {
		*calls = append(*calls, name)
		return err
	}
}

func TestRunner_RequiredFailureAborts(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	res, err := (&Runner{}).Run(context.Background(), []Step{
		{Name: "one", Run: record(&calls, "one", nil)},
		{Name: "two", Policy: Required, Run: record(&calls, "two", boom)},
		{Name: "three", Run: record(&calls, "three", nil)},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "two", stepErr.Step)
	assert.Equal(t, "two: boom", err.Error())

	assert.Equal(t, []string{"one", "two"}, calls)
	assert.Equal(t, []string{"one"}, res.Completed)
}

func TestRunner_BestEffortFailureContinues(t *testing.T) {
	var calls []string
	missing := errors.New("remote ref does not exist")

	res, err := (&Runner{}).Run(context.Background(), []Step{
		{Name: "delete remote alias", Policy: BestEffort, Run: record(&calls, "delete", missing)},
		{Name: "push alias", Run: record(&calls, "push", nil)},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"delete", "push"}, calls)
	assert.Equal(t, []string{"push alias"}, res.Completed)
	assert.Equal(t, missing, res.Ignored["delete remote alias"])
}

func TestRunner_DryRunExecutesNothing(t *testing.T) {
	var calls []string

	res, err := (&Runner{DryRun: true}).Run(context.Background(), []Step{
		{Name: "create", Run: record(&calls, "create", nil)},
		{Name: "push", Run: record(&calls, "push", errors.New("unreachable"))},
	})

	require.NoError(t, err)
	assert.Empty(t, calls)
	assert.Empty(t, res.Completed)
}

func TestRunner_CanceledContext(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Runner{}).Run(ctx, []Step{{Name: "create", Run: record(&calls, "create", nil)}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "required", Required.String())
	assert.Equal(t, "best-effort", BestEffort.String())
}
