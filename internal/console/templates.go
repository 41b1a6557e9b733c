package console

import "html/template"

// The console is a thin operational surface; the markup stays deliberately
// plain and is compiled once at startup.
var templates = template.Must(template.New("console").Parse(`
{{define "login"}}<!DOCTYPE html>
<html>
<head><title>SaludRed Console</title></head>
<body>
<h1>SaludRed Console</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="POST" action="/console/login">
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Sign in</button>
</form>
</body>
</html>{{end}}

{{define "dashboard"}}<!DOCTYPE html>
<html>
<head><title>Dashboard - SaludRed Console</title></head>
<body>
<h1>Welcome, {{.Name}}</h1>
<p>Signed in as {{.Role}}</p>
{{if .Stats}}
<ul>
  <li>Users: {{.Stats.Users}}</li>
  <li>Health centers: {{.Stats.HealthCenters}}</li>
  <li>Services: {{.Stats.Services}}</li>
  <li>Appointments: {{.Stats.Appointments}}</li>
  <li>Notifications: {{.Stats.Notifications}}</li>
</ul>
<h2>Appointments by status</h2>
<ul>
{{range $status, $count := .Stats.AppointmentsByStatus}}  <li>{{$status}}: {{$count}}</li>
{{end}}</ul>
{{end}}
{{if .Appointments}}
<h2>Appointments</h2>
<table>
  <tr><th>Date</th><th>Time</th><th>Status</th><th>Patient</th></tr>
{{range .Appointments}}  <tr><td>{{.Date}}</td><td>{{.Time}}</td><td>{{.Status}}</td><td>{{if .User}}{{.User.Name}}{{else}}{{.UserID}}{{end}}</td></tr>
{{end}}</table>
{{end}}
<form method="POST" action="/console/logout"><button type="submit">Sign out</button></form>
</body>
</html>{{end}}
`))
