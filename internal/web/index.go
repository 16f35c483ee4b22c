package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Recent Apps</title>
    <style>
        :root {
            --bg-primary: #f5f5f5;
            --bg-secondary: white;
            --text-primary: #333;
            --text-muted: #7f8c8d;
            --accent-color: #3498db;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            max-width: 640px;
            margin: 40px auto;
        }
        .card {
            background: var(--bg-secondary);
            border-radius: 8px;
            padding: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        li:first-child { color: var(--accent-color); font-weight: bold; }
        .muted { color: var(--text-muted); font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="card">
        <h1>Recent Apps</h1>
        <p class="muted">Strategy: <span id="strategy">-</span> &middot; <span id="state">connecting</span></p>
        <ol id="apps"></ol>
    </div>
    <script>
        const scheme = location.protocol === 'https:' ? 'wss' : 'ws';
        const ws = new WebSocket(scheme + '://' + location.host + '/api/watch');
        const list = document.getElementById('apps');
        const state = document.getElementById('state');

        ws.onmessage = (event) => {
            const msg = JSON.parse(event.data);
            if (msg.type === 'subscribed') {
                document.getElementById('strategy').textContent = msg.strategy;
                state.textContent = 'live';
            } else if (msg.type === 'recent_apps') {
                list.innerHTML = '';
                (msg.apps || []).forEach((app) => {
                    const li = document.createElement('li');
                    li.textContent = app;
                    list.appendChild(li);
                });
            } else if (msg.type === 'error') {
                state.textContent = 'error: ' + msg.error;
            }
        };
        ws.onclose = () => { state.textContent = 'disconnected'; };
    </script>
</body>
</html>`
