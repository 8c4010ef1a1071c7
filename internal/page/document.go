package page

import (
	"fmt"
	"html"
	"io"
)

const stylesheet = `body{font-family:sans-serif;margin:2rem}
.calendar header{display:flex;align-items:center;gap:1rem}
.calendar nav form{display:inline}
.calendar table{border-collapse:collapse;width:100%}
.calendar th,.calendar td{border:1px solid #ccc;vertical-align:top;width:14%;height:5rem;padding:.25rem}
.calendar td.today{background:#fff6d5}
.calendar .events{margin:0;padding-left:1rem;font-size:.8rem}
.loading{color:#666}.error{color:#b00020}`

// WriteDocument writes the HTML page with the container mounted in its body
func WriteDocument(w io.Writer, title string, c *Container) error {
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>%s</style>
</head>
<body>
<h1>%s</h1>
<div id="%s">%s</div>
</body>
</html>
`, html.EscapeString(title), stylesheet, html.EscapeString(title), html.EscapeString(c.ID()), c.HTML())
	return err
}
