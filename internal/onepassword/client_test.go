package onepassword_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/workstation/internal/execshell"
	"github.com/tyemirov/workstation/internal/onepassword"
)

const (
	testItemIdentifierConstant = "abc123"
	testItemPayloadConstant    = `{
  "id": "abc123",
  "title": "AWS Credentials",
  "vault": {"id": "vault42"},
  "fields": [
    {"id": "username", "label": "Access Key", "value": "AKIA"},
    {"id": "credential", "label": "Access Secret", "value": "shhh"}
  ]
}`
	testItemListPayloadConstant = `[{"id": "key1", "title": "build key", "vault": {"id": "vault42"}}]`
)

type recordingOnePasswordExecutor struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedDetails  []execshell.CommandDetails
	recordedContexts int
}

func (executor *recordingOnePasswordExecutor) ExecuteOnePassword(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	executor.recordedContexts++
	return executor.executionResult, executor.executionError
}

type stubToolLocator struct {
	available bool
}

func (locator stubToolLocator) IsToolAvailable(execshell.CommandName) bool {
	return locator.available
}

func TestNewClientValidatesDependencies(testInstance *testing.T) {
	_, creationError := onepassword.NewClient(nil, stubToolLocator{})
	require.ErrorIs(testInstance, creationError, onepassword.ErrExecutorNotConfigured)

	_, creationError = onepassword.NewClient(&recordingOnePasswordExecutor{}, nil)
	require.ErrorIs(testInstance, creationError, onepassword.ErrToolLocatorNotConfigured)
}

func TestIsInstalledDelegatesToLocator(testInstance *testing.T) {
	client, creationError := onepassword.NewClient(&recordingOnePasswordExecutor{}, stubToolLocator{available: true})
	require.NoError(testInstance, creationError)
	require.True(testInstance, client.IsInstalled())
}

func TestSessionAndAccountChecks(testInstance *testing.T) {
	testCases := []struct {
		name            string
		executionResult execshell.ExecutionResult
		executionError  error
		check           func(client *onepassword.Client) bool
		expected        bool
	}{
		{
			name:     "active_session",
			check:    func(client *onepassword.Client) bool { return client.HasActiveSession(context.Background()) },
			expected: true,
		},
		{
			name:           "expired_session",
			executionError: errors.New("not signed in"),
			check:          func(client *onepassword.Client) bool { return client.HasActiveSession(context.Background()) },
			expected:       false,
		},
		{
			name:            "accounts_present",
			executionResult: execshell.ExecutionResult{StandardOutput: "URL  EMAIL\nmy.1password.com  dev@example.com\n"},
			check:           func(client *onepassword.Client) bool { return client.HasAccounts(context.Background()) },
			expected:        true,
		},
		{
			name:            "no_accounts",
			executionResult: execshell.ExecutionResult{StandardOutput: "  \n"},
			check:           func(client *onepassword.Client) bool { return client.HasAccounts(context.Background()) },
			expected:        false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingOnePasswordExecutor{
				executionResult: testCase.executionResult,
				executionError:  testCase.executionError,
			}
			client, creationError := onepassword.NewClient(executor, stubToolLocator{available: true})
			require.NoError(testInstance, creationError)

			require.Equal(testInstance, testCase.expected, testCase.check(client))
		})
	}
}

func TestSignInFlowsUseStandardStreams(testInstance *testing.T) {
	executor := &recordingOnePasswordExecutor{}
	client, creationError := onepassword.NewClient(executor, stubToolLocator{available: true})
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, client.SignIn(context.Background()))
	require.NoError(testInstance, client.AddAccount(context.Background(), "https://my.1password.com"))

	require.Len(testInstance, executor.recordedDetails, 2)
	require.True(testInstance, executor.recordedDetails[0].UseStandardStreams)
	require.Equal(testInstance, []string{"signin"}, executor.recordedDetails[0].Arguments)
	require.True(testInstance, executor.recordedDetails[1].UseStandardStreams)
	require.Equal(testInstance, []string{"account", "add", "--address", "https://my.1password.com"}, executor.recordedDetails[1].Arguments)
}

func TestGetItemDecodesFields(testInstance *testing.T) {
	executor := &recordingOnePasswordExecutor{
		executionResult: execshell.ExecutionResult{StandardOutput: testItemPayloadConstant},
	}
	client, creationError := onepassword.NewClient(executor, stubToolLocator{available: true})
	require.NoError(testInstance, creationError)

	item, fetchError := client.GetItem(context.Background(), testItemIdentifierConstant)
	require.NoError(testInstance, fetchError)
	require.Equal(testInstance, testItemIdentifierConstant, item.Identifier)
	require.Equal(testInstance, "vault42", item.Vault.Identifier)
	require.Equal(testInstance,
		[]string{"item", "get", testItemIdentifierConstant, "--reveal", "--format", "json"},
		executor.recordedDetails[0].Arguments,
	)

	accessKey, found := item.FieldValue("ACCESS KEY")
	require.True(testInstance, found)
	require.Equal(testInstance, "AKIA", accessKey)

	secret, found := item.FieldValue("credential")
	require.True(testInstance, found)
	require.Equal(testInstance, "shhh", secret)

	_, found = item.FieldValue("missing field")
	require.False(testInstance, found)
}

func TestGetItemRequiresIdentifier(testInstance *testing.T) {
	client, creationError := onepassword.NewClient(&recordingOnePasswordExecutor{}, stubToolLocator{available: true})
	require.NoError(testInstance, creationError)

	_, fetchError := client.GetItem(context.Background(), "  ")
	require.ErrorIs(testInstance, fetchError, onepassword.ErrItemIdentifierMissing)
}

func TestGetItemSurfacesDecodeFailures(testInstance *testing.T) {
	executor := &recordingOnePasswordExecutor{
		executionResult: execshell.ExecutionResult{StandardOutput: "not json"},
	}
	client, creationError := onepassword.NewClient(executor, stubToolLocator{available: true})
	require.NoError(testInstance, creationError)

	_, fetchError := client.GetItem(context.Background(), testItemIdentifierConstant)
	require.Error(testInstance, fetchError)
}

func TestListItemsByCategory(testInstance *testing.T) {
	executor := &recordingOnePasswordExecutor{
		executionResult: execshell.ExecutionResult{StandardOutput: testItemListPayloadConstant},
	}
	client, creationError := onepassword.NewClient(executor, stubToolLocator{available: true})
	require.NoError(testInstance, creationError)

	items, listError := client.ListItemsByCategory(context.Background(), "SSH Key")
	require.NoError(testInstance, listError)
	require.Len(testInstance, items, 1)
	require.Equal(testInstance, "key1", items[0].Identifier)
	require.Equal(testInstance,
		[]string{"item", "list", "--categories", "SSH Key", "--format", "json"},
		executor.recordedDetails[0].Arguments,
	)
}
