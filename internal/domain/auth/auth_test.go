package auth

import (
	"testing"

	"fieldops/internal/domain/directory"
)

func TestCapabilitiesByRole(t *testing.T) {
	manager := Principal{EmployeeID: "mgr-1", Role: directory.RoleManager}
	admin := Principal{EmployeeID: "adm-1", Role: directory.RoleAdmin}
	employee := Principal{EmployeeID: "emp-1", Role: directory.RoleEmployee}

	for _, capability := range []string{CapApproveLeaves, CapManageTypes, CapManageRules, CapViewAllLeaves} {
		if !manager.Can(capability) {
			t.Errorf("manager should hold %s", capability)
		}
		if !admin.Can(capability) {
			t.Errorf("admin should hold %s", capability)
		}
		if employee.Can(capability) {
			t.Errorf("employee should not hold %s", capability)
		}
	}

	unknown := Principal{EmployeeID: "x", Role: "CONTRACTOR"}
	if unknown.Can(CapApproveLeaves) {
		t.Error("unknown role must hold no capabilities")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("secret", "emp-1", directory.RoleManager)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.EmployeeID != "emp-1" || claims.Role != directory.RoleManager {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseToken("wrong-secret", token); err == nil {
		t.Fatal("token must not verify under a different secret")
	}
}
