package server

import "html/template"

// uploadTemplate is the single page the server renders. Inlined so the
// binary ships without asset files.
var uploadTemplate = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Form Filler</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            max-width: 640px;
            margin: 40px auto;
            padding: 0 20px;
            color: #1f2933;
        }
        h1 { font-size: 1.5em; }
        form {
            border: 1px solid #d2d6dc;
            border-radius: 8px;
            padding: 24px;
            margin-top: 24px;
        }
        label { display: block; margin-bottom: 6px; font-weight: 600; }
        input[type="file"] { display: block; margin-bottom: 18px; }
        button {
            background: #2563eb;
            color: #fff;
            border: none;
            border-radius: 6px;
            padding: 10px 18px;
            font-size: 1em;
            cursor: pointer;
        }
        button:hover { background: #1d4ed8; }
        p.hint { color: #616e7c; font-size: 0.9em; }
    </style>
</head>
<body>
    <h1>Form Filler</h1>
    <p class="hint">Upload the response spreadsheet and the fillable PDF template.
    One flattened document is generated per response row and returned as a zip.</p>
    <form action="/generate" method="post" enctype="multipart/form-data">
        <label for="spreadsheet">Response spreadsheet (.xlsx)</label>
        <input type="file" id="spreadsheet" name="spreadsheet" accept=".xlsx" required>

        <label for="template">PDF template (.pdf)</label>
        <input type="file" id="template" name="template" accept=".pdf" required>

        <button type="submit">Generate documents</button>
    </form>
</body>
</html>
`))
