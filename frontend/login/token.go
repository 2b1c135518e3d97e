package login

import "crypto/rand"

const (
	employeeTokenPrefix = "emp_"
	adminTokenPrefix    = "adm_"
)

// newSessionToken returns a 128-bit random session id tagged with the kind of
// login that created it, so sessions rows can be told apart at a glance.
func newSessionToken(prefix string) string {
	return prefix + rand.Text()
}
