// Package onepassword wraps the 1Password CLI for credential retrieval.
package onepassword

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/workstation/internal/execshell"
)

const (
	whoamiSubcommandConstant             = "whoami"
	accountSubcommandConstant            = "account"
	accountListSubcommandConstant        = "list"
	accountAddSubcommandConstant         = "add"
	accountAddressFlagConstant           = "--address"
	signinSubcommandConstant             = "signin"
	itemSubcommandConstant               = "item"
	itemGetSubcommandConstant            = "get"
	itemListSubcommandConstant           = "list"
	itemRevealFlagConstant               = "--reveal"
	itemCategoriesFlagConstant           = "--categories"
	formatFlagConstant                   = "--format"
	jsonFormatValueConstant              = "json"
	executorNotConfiguredMessageConstant = "onepassword client executor not configured"
	locatorNotConfiguredMessageConstant  = "onepassword client tool locator not configured"
	itemIdentifierMissingMessageConstant = "onepassword item identifier not provided"
	itemDecodeErrorMessageTemplate       = "unable to decode 1Password item %s: %w"
	itemListDecodeErrorMessageTemplate   = "unable to decode 1Password item list: %w"
)

var (
	// ErrExecutorNotConfigured indicates the shell executor dependency was missing.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrToolLocatorNotConfigured indicates the tool locator dependency was missing.
	ErrToolLocatorNotConfigured = errors.New(locatorNotConfiguredMessageConstant)
	// ErrItemIdentifierMissing indicates an item lookup without an identifier.
	ErrItemIdentifierMissing = errors.New(itemIdentifierMissingMessageConstant)
)

// ItemField carries one field of a 1Password item.
type ItemField struct {
	Identifier string `json:"id"`
	Label      string `json:"label"`
	Value      string `json:"value"`
}

// ItemVault identifies the vault containing an item.
type ItemVault struct {
	Identifier string `json:"id"`
}

// Item represents a decoded 1Password item.
type Item struct {
	Identifier string      `json:"id"`
	Title      string      `json:"title"`
	Vault      ItemVault   `json:"vault"`
	Fields     []ItemField `json:"fields"`
}

// FieldValue returns the value of the field whose id or label matches the
// identifier. Matching ignores case.
func (item Item) FieldValue(fieldIdentifier string) (string, bool) {
	normalizedIdentifier := strings.ToLower(strings.TrimSpace(fieldIdentifier))
	for _, itemField := range item.Fields {
		if strings.ToLower(itemField.Identifier) == normalizedIdentifier || strings.ToLower(itemField.Label) == normalizedIdentifier {
			return itemField.Value, true
		}
	}
	return "", false
}

// CommandExecutor runs 1Password CLI invocations.
type CommandExecutor interface {
	ExecuteOnePassword(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client provides typed access to the 1Password CLI.
type Client struct {
	commandExecutor CommandExecutor
	toolLocator     execshell.ToolLocator
}

// NewClient constructs a Client with the provided collaborators.
func NewClient(commandExecutor CommandExecutor, toolLocator execshell.ToolLocator) (*Client, error) {
	if commandExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if toolLocator == nil {
		return nil, ErrToolLocatorNotConfigured
	}
	return &Client{commandExecutor: commandExecutor, toolLocator: toolLocator}, nil
}

// IsInstalled reports whether the 1Password CLI resolves on PATH.
func (client *Client) IsInstalled() bool {
	return client.toolLocator.IsToolAvailable(execshell.CommandOnePassword)
}

// HasActiveSession reports whether the CLI holds an authenticated session.
func (client *Client) HasActiveSession(executionContext context.Context) bool {
	_, executionError := client.commandExecutor.ExecuteOnePassword(executionContext, execshell.CommandDetails{
		Arguments: []string{whoamiSubcommandConstant},
	})
	return executionError == nil
}

// HasAccounts reports whether any account is registered with the CLI.
func (client *Client) HasAccounts(executionContext context.Context) bool {
	executionResult, executionError := client.commandExecutor.ExecuteOnePassword(executionContext, execshell.CommandDetails{
		Arguments: []string{accountSubcommandConstant, accountListSubcommandConstant},
	})
	if executionError != nil {
		return false
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0
}

// SignIn runs the interactive signin flow with attached standard streams.
func (client *Client) SignIn(executionContext context.Context) error {
	_, executionError := client.commandExecutor.ExecuteOnePassword(executionContext, execshell.CommandDetails{
		Arguments:          []string{signinSubcommandConstant},
		UseStandardStreams: true,
	})
	return executionError
}

// AddAccount registers an account for the provided sign-in address through the
// interactive account-add flow.
func (client *Client) AddAccount(executionContext context.Context, signInAddress string) error {
	_, executionError := client.commandExecutor.ExecuteOnePassword(executionContext, execshell.CommandDetails{
		Arguments:          []string{accountSubcommandConstant, accountAddSubcommandConstant, accountAddressFlagConstant, signInAddress},
		UseStandardStreams: true,
	})
	return executionError
}

// GetItem fetches an item with revealed field values.
func (client *Client) GetItem(executionContext context.Context, itemIdentifier string) (Item, error) {
	if len(strings.TrimSpace(itemIdentifier)) == 0 {
		return Item{}, ErrItemIdentifierMissing
	}

	executionResult, executionError := client.commandExecutor.ExecuteOnePassword(executionContext, execshell.CommandDetails{
		Arguments: []string{itemSubcommandConstant, itemGetSubcommandConstant, itemIdentifier, itemRevealFlagConstant, formatFlagConstant, jsonFormatValueConstant},
	})
	if executionError != nil {
		return Item{}, executionError
	}

	decodedItem := Item{}
	if decodeError := json.Unmarshal([]byte(executionResult.StandardOutput), &decodedItem); decodeError != nil {
		return Item{}, fmt.Errorf(itemDecodeErrorMessageTemplate, itemIdentifier, decodeError)
	}
	return decodedItem, nil
}

// ListItemsByCategory lists items of the given category.
func (client *Client) ListItemsByCategory(executionContext context.Context, categoryName string) ([]Item, error) {
	executionResult, executionError := client.commandExecutor.ExecuteOnePassword(executionContext, execshell.CommandDetails{
		Arguments: []string{itemSubcommandConstant, itemListSubcommandConstant, itemCategoriesFlagConstant, categoryName, formatFlagConstant, jsonFormatValueConstant},
	})
	if executionError != nil {
		return nil, executionError
	}

	decodedItems := []Item{}
	if decodeError := json.Unmarshal([]byte(executionResult.StandardOutput), &decodedItems); decodeError != nil {
		return nil, fmt.Errorf(itemListDecodeErrorMessageTemplate, decodeError)
	}
	return decodedItems, nil
}
