package email

const alertEmailTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #1f3a93; padding-bottom: 10px; margin-bottom: 20px; }
        .badge { display: inline-block; padding: 4px 10px; border-radius: 4px; font-size: 12px; text-transform: uppercase; color: white; }
        .expired, .due_today { background: #c0392b; }
        .critical { background: #e67e22; }
        .warning { background: #f1c40f; color: #333; }
        .info, .milestone { background: #2980b9; }
        .button { display: inline-block; padding: 12px 24px; background: #1f3a93; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Oficinas Master</h1>
        <p>{{.WorkshopName}}</p>
    </div>

    <p>Olá, {{.OwnerName}}!</p>

    <h2>{{.Title}}</h2>
    {{if .Severity}}<span class="badge {{.SeverityClass}}">{{.Severity}}</span>{{end}}

    <p>{{.Message}}</p>
    {{with date .TargetDate}}<p><strong>Data limite:</strong> {{.}}</p>{{end}}

    {{if .ActionURL}}
    <p>
        <a href="{{.ActionURL}}" class="button">Abrir no Oficinas Master</a>
    </p>
    {{end}}

    <div class="footer">
        <p>Você recebe este aviso porque os alertas por e-mail estão ativos para a sua oficina.</p>
    </div>
</body>
</html>`
