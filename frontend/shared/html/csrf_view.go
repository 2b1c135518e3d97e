package html

import "fmt"

// Names shared by the CSRF middleware and the browser script.
const (
	CSRFCookieName = "fleetcheck_csrf"
	CSRFHeaderName = "X-CSRF-Token"
	CSRFFieldName  = "_csrf"
)

// csrfScript copies the CSRF cookie into a hidden field on every POST form as
// it is submitted, so forms rendered after page load are covered too.
var csrfScript = fmt.Sprintf(`<script>
document.addEventListener("submit", function (ev) {
  var form = ev.target;
  if ((form.method || "").toUpperCase() !== "POST") return;
  var m = document.cookie.match(/(?:^|;\s*)%[1]s=([^;]*)/);
  if (!m) return;
  var field = form.querySelector("input[name='%[2]s']");
  if (!field) {
    field = document.createElement("input");
    field.type = "hidden";
    field.name = "%[2]s";
    form.appendChild(field);
  }
  field.value = decodeURIComponent(m[1]);
}, true);
</script>`, CSRFCookieName, CSRFFieldName)

// CSRFFormScript is appended to every page by Page.
func CSRFFormScript() string {
	return csrfScript
}
