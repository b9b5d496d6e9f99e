package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/buildsmart/erp_backend/models"
	"github.com/buildsmart/erp_backend/utils"
	"github.com/shopspring/decimal"
)

// End-to-end flow against a throwaway MySQL: login issues a verifiable
// token, invoice creation fixes status to Pending with a generated number
// and writes its audit entry, and the audit trail reads newest-first.
func TestLoginInvoiceAuditFlow(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "erp_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	db := config.GetDB()

	hashed, err := utils.HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	alice := models.User{
		Name:     "Alice Carter",
		Email:    "alice@buildsmart.com",
		Password: string(hashed),
		Role:     models.UserRoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&alice).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	skyline := models.Project{
		Name:      "Skyline Tower Phase 1",
		Budget:    decimal.NewFromInt(1500000),
		Spent:     decimal.NewFromInt(1200000),
		Progress:  60,
		Status:    models.ProjectStatusActive,
		StartDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	if err := db.WithContext(ctx).Create(&skyline).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	// Login: wrong password and unknown user must fail with distinct reasons.
	if _, err := models.Login(ctx, "alice@buildsmart.com", "wrong"); !errors.Is(err, utils.ErrorInvalidPassword) {
		t.Fatalf("expected invalid-password error, got %v", err)
	}
	if _, err := models.Login(ctx, "nobody@buildsmart.com", "password"); !errors.Is(err, utils.ErrorUserNotFound) {
		t.Fatalf("expected user-not-found error, got %v", err)
	}

	login, err := models.Login(ctx, "alice@buildsmart.com", "password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.Password != "" {
		t.Fatal("login response must not carry the password hash")
	}
	claims, err := utils.JwtValidate(login.Token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.ID != alice.ID || claims.Email != alice.Email || claims.Role != string(models.UserRoleAdmin) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Invoice creation under the logged-in identity.
	invCtx := utils.SetUserNameInContext(ctx, alice.Name)
	invoice, err := models.CreateInvoice(invCtx, &models.NewInvoice{
		Vendor:    "Steel Supplies Co.",
		Amount:    decimal.NewFromInt(45000),
		DueDate:   time.Date(2023, 10, 25, 0, 0, 0, 0, time.UTC),
		ProjectId: skyline.ID,
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if invoice.Status != models.InvoiceStatusPending {
		t.Fatalf("new invoice status = %q, want Pending", invoice.Status)
	}
	if !regexp.MustCompile(`^INV-\d{4}$`).MatchString(invoice.ID) {
		t.Fatalf("invoice id %q does not match INV-nnnn", invoice.ID)
	}

	// Referencing a missing project must be rejected before insert.
	if _, err := models.CreateInvoice(invCtx, &models.NewInvoice{
		Vendor:    "Ghost Vendor",
		Amount:    decimal.NewFromInt(100),
		DueDate:   time.Now(),
		ProjectId: 9999,
	}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected record-not-found for missing project, got %v", err)
	}

	// Audit trail: login + invoice entries, newest first.
	logs, err := models.GetAllAuditLogs(ctx)
	if err != nil {
		t.Fatalf("GetAllAuditLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("audit log count = %d, want 2", len(logs))
	}
	if logs[0].Action != "Created Invoice "+invoice.ID {
		t.Fatalf("newest audit entry = %q, want invoice creation", logs[0].Action)
	}
	if logs[1].Action != "Logged in" || logs[1].UserName != alice.Name {
		t.Fatalf("oldest audit entry = %q by %q, want login by %s", logs[1].Action, logs[1].UserName, alice.Name)
	}
	if logs[0].ID <= logs[1].ID {
		t.Fatal("audit trail must be ordered id descending")
	}

	// Risk is recomputed on read: 80% spent vs 60% progress is a High risk.
	projects, err := models.GetAllProjects(ctx)
	if err != nil {
		t.Fatalf("GetAllProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("project count = %d, want 1", len(projects))
	}
	if projects[0].RiskScore != 50 || projects[0].RiskLevel != models.RiskLevelHigh {
		t.Fatalf("risk = (%d, %s), want (50, High)", projects[0].RiskScore, projects[0].RiskLevel)
	}
}

// fixedNumbers replays a fixed identifier sequence, sticking on the last
// entry, and counts how many draws the retry loop makes.
type fixedNumbers struct {
	ids   []string
	calls int
}

func (f *fixedNumbers) Next() string {
	i := f.calls
	if i >= len(f.ids) {
		i = len(f.ids) - 1
	}
	f.calls++
	return f.ids[i]
}

// Collision policy: a duplicate invoice number is retried with a fresh draw,
// up to the attempt cap, and only then surfaces as an error.
func TestInvoiceNumberCollisionRetriedUntilUnique(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "erp_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	db := config.GetDB()

	bridge := models.Project{
		Name:      "Riverfront Bridge",
		Budget:    decimal.NewFromInt(5000000),
		Spent:     decimal.NewFromInt(1000000),
		Progress:  25,
		Status:    models.ProjectStatusActive,
		StartDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.WithContext(ctx).Create(&bridge).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	taken := models.Invoice{
		ID:        "INV-5500",
		Vendor:    "Concrete Mixers Ltd",
		Amount:    decimal.NewFromInt(12000),
		DueDate:   time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC),
		Status:    models.InvoiceStatusPending,
		ProjectId: bridge.ID,
	}
	if err := db.WithContext(ctx).Create(&taken).Error; err != nil {
		t.Fatalf("pre-insert invoice: %v", err)
	}

	// First draw collides with the existing row, second is free.
	gen := &fixedNumbers{ids: []string{"INV-5500", "INV-5501"}}
	restore := models.SwapInvoiceNumbers(gen)
	t.Cleanup(restore)

	invCtx := utils.SetEmailInContext(ctx, "bob@buildsmart.com")
	invoice, err := models.CreateInvoice(invCtx, &models.NewInvoice{
		Vendor:    "Heavy Machinery Rentals",
		Amount:    decimal.NewFromInt(25000),
		DueDate:   time.Date(2023, 11, 10, 0, 0, 0, 0, time.UTC),
		ProjectId: bridge.ID,
	})
	if err != nil {
		t.Fatalf("CreateInvoice after collision: %v", err)
	}
	if invoice.ID != "INV-5501" {
		t.Fatalf("invoice id = %q, want the second draw INV-5501", invoice.ID)
	}
	if gen.calls != 2 {
		t.Fatalf("draws = %d, want 2 (one collision, one retry)", gen.calls)
	}

	// Without a display name in the request context the audit actor falls
	// back to the token's email claim.
	logs, err := models.GetAllAuditLogs(ctx)
	if err != nil {
		t.Fatalf("GetAllAuditLogs: %v", err)
	}
	if len(logs) == 0 || logs[0].Action != "Created Invoice INV-5501" {
		t.Fatalf("missing audit entry for the retried invoice: %+v", logs)
	}
	if logs[0].UserName != "bob@buildsmart.com" {
		t.Fatalf("audit actor = %q, want the email claim", logs[0].UserName)
	}

	// Every draw colliding exhausts the attempt cap and fails the create.
	stuck := &fixedNumbers{ids: []string{"INV-5501"}}
	restoreStuck := models.SwapInvoiceNumbers(stuck)
	t.Cleanup(restoreStuck)

	if _, err := models.CreateInvoice(invCtx, &models.NewInvoice{
		Vendor:    "Safety Gear Inc.",
		Amount:    decimal.NewFromInt(3500),
		DueDate:   time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC),
		ProjectId: bridge.ID,
	}); err == nil {
		t.Fatal("expected an error once every draw collides")
	}
	if stuck.calls != models.MaxInvoiceNumberAttempts {
		t.Fatalf("draws = %d, want the attempt cap %d", stuck.calls, models.MaxInvoiceNumberAttempts)
	}

	var invoiceCount int64
	if err := db.WithContext(ctx).Model(&models.Invoice{}).Count(&invoiceCount).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if invoiceCount != 2 {
		t.Fatalf("invoice count = %d, want 2 (the exhausted create must not insert)", invoiceCount)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("erp-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=erp_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
