package e2e

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the customer registry is running$`, tc.registryIsRunning)

	// Form steps
	ctx.Step(`^I open a new customer form$`, tc.openNewForm)
	ctx.Step(`^I open the form for the saved customer$`, tc.openEditForm)
	ctx.Step(`^I type "([^"]*)" into "([^"]*)"$`, tc.typeInto)
	ctx.Step(`^I type a fresh CPF$`, tc.typeFreshCPF)
	ctx.Step(`^I type the saved CPF$`, tc.typeSavedCPF)
	ctx.Step(`^I fill in a valid customer named "([^"]*)"$`, tc.fillValidCustomer)
	ctx.Step(`^I submit the form$`, tc.submitForm)
	ctx.Step(`^I remember the saved customer$`, tc.rememberCustomer)
	ctx.Step(`^I answer "(yes|no)" to registering another$`, tc.answerAnother)
	ctx.Step(`^I ask to leave the form$`, tc.askToLeave)

	// List steps
	ctx.Step(`^I search customers by the saved CPF$`, tc.searchBySavedCPF)
	ctx.Step(`^I delete the saved customer without confirming$`, tc.deleteUnconfirmed)
	ctx.Step(`^I delete the saved customer confirming$`, tc.deleteConfirmed)
	ctx.Step(`^I sort customers by "([^"]*)"$`, tc.sortBy)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be empty$`, tc.responseFieldShouldBeEmpty)
	ctx.Step(`^the list should contain (\d+) rows?$`, tc.listShouldContainRows)
}

func (tc *TestContext) registryIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live"); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, 200)
}

func (tc *TestContext) openNewForm(ctx context.Context) error {
	if err := tc.POST("/forms", map[string]any{}); err != nil {
		return err
	}
	return tc.captureSession()
}

func (tc *TestContext) openEditForm(ctx context.Context) error {
	if tc.CustomerID == "" {
		return fmt.Errorf("no saved customer to edit")
	}
	if err := tc.POST("/forms", map[string]any{"id": tc.CustomerID}); err != nil {
		return err
	}
	return tc.captureSession()
}

func (tc *TestContext) captureSession() error {
	sid, err := tc.FieldString("session_id")
	if err != nil {
		return err
	}
	tc.SessionID = sid
	return nil
}

func (tc *TestContext) typeInto(ctx context.Context, value, field string) error {
	return tc.POST(tc.formPath("/input"), map[string]any{"field": field, "value": value})
}

func (tc *TestContext) typeFreshCPF(ctx context.Context) error {
	tc.CPF = FreshCPF()
	return tc.typeInto(ctx, tc.CPF, "cpf")
}

func (tc *TestContext) typeSavedCPF(ctx context.Context) error {
	if tc.CPF == "" {
		return fmt.Errorf("no CPF saved in this scenario")
	}
	return tc.typeInto(ctx, tc.CPF, "cpf")
}

func (tc *TestContext) fillValidCustomer(ctx context.Context, name string) error {
	steps := [][2]string{
		{"name", name},
		{"email", "e2e@example.com"},
		{"birth_date", "15/05/1990"},
		{"phone", "11987654321"},
	}
	for _, s := range steps {
		if err := tc.typeInto(ctx, s[1], s[0]); err != nil {
			return err
		}
		if tc.Status() != 200 {
			return fmt.Errorf("typing %s: status %d: %s", s[0], tc.Status(), tc.LastResponseBody)
		}
	}
	return tc.typeFreshCPF(ctx)
}

func (tc *TestContext) submitForm(ctx context.Context) error {
	return tc.POST(tc.formPath("/submit"), map[string]any{})
}

func (tc *TestContext) rememberCustomer(ctx context.Context) error {
	customerID, err := tc.FieldString("customer_id")
	if err != nil {
		return err
	}
	if customerID == "" {
		return fmt.Errorf("no customer id in response: %s", tc.LastResponseBody)
	}
	tc.CustomerID = customerID
	tc.created = append(tc.created, customerID)
	return nil
}

func (tc *TestContext) answerAnother(ctx context.Context, answer string) error {
	return tc.POST(tc.formPath("/after-save"), map[string]any{"another": answer == "yes"})
}

func (tc *TestContext) askToLeave(ctx context.Context) error {
	return tc.GET(tc.formPath("/leave"))
}

func (tc *TestContext) searchBySavedCPF(ctx context.Context) error {
	return tc.POST("/customers/search", map[string]any{"cpf": tc.CPF})
}

func (tc *TestContext) deleteUnconfirmed(ctx context.Context) error {
	return tc.DELETE("/customers/" + url.PathEscape(tc.CustomerID) + "?" + tc.cpfFilter())
}

func (tc *TestContext) deleteConfirmed(ctx context.Context) error {
	if err := tc.DELETE("/customers/" + url.PathEscape(tc.CustomerID) + "?confirm=true&" + tc.cpfFilter()); err != nil {
		return err
	}
	if tc.Status() == 200 {
		tc.created = removeID(tc.created, tc.CustomerID)
	}
	return nil
}

func (tc *TestContext) sortBy(ctx context.Context, column string) error {
	return tc.POST("/customers/sort", map[string]any{"column": column})
}

func (tc *TestContext) cpfFilter() string {
	return url.Values{"cpf": {tc.CPF}}.Encode()
}

func (tc *TestContext) formPath(suffix string) string {
	return "/forms/" + tc.SessionID + suffix
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if actual := tc.Status(); actual != expectedStatus {
		return fmt.Errorf("expected status %d but got %d: %s", expectedStatus, actual, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	actual, err := tc.FieldString(field)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("field %s: expected %q but got %q", field, expected, actual)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeEmpty(ctx context.Context, field string) error {
	actual, err := tc.FieldString(field)
	if err != nil {
		return err
	}
	if strings.TrimSpace(actual) != "" {
		return fmt.Errorf("field %s: expected empty but got %q", field, actual)
	}
	return nil
}

func (tc *TestContext) listShouldContainRows(ctx context.Context, n int) error {
	rows, err := tc.Field("rows")
	if err != nil {
		return err
	}
	list, ok := rows.([]any)
	if !ok {
		return fmt.Errorf("rows is not a list: %s", tc.LastResponseBody)
	}
	if len(list) != n {
		return fmt.Errorf("expected %d rows but got %d", n, len(list))
	}
	return nil
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
