package server

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
)

var thinClientETag = func() string {
	sum := sha256.Sum256([]byte(thinClientJS))
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}()

// serveThinClient serves the embedded client script with ETag caching.
func (s *Server) serveThinClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("ETag", thinClientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// DevMode: no-store to avoid stale client behavior while iterating.
	// Otherwise: revalidate via ETag so updates are picked up safely.
	if s.config != nil && s.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), thinClientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(thinClientJS))
}

func etagMatches(ifNoneMatchHeader, etag string) bool {
	if ifNoneMatchHeader == "" || etag == "" {
		return false
	}
	// Handle lists: If-None-Match: "abc", W/"def"
	for _, part := range strings.Split(ifNoneMatchHeader, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == etag {
			return true
		}
		if strings.HasPrefix(candidate, "W/") && strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// thinClientJS is the browser side of the live form: it forwards input,
// blur and submit events over the socket and applies the ops that come
// back.
const thinClientJS = `(function() {
    'use strict';

    var form = document.getElementById('fieldset-form');
    if (!form) return;

    var ws = null;
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;

    function fieldInput(name) {
        return form.querySelector('[name="' + CSS.escape(name) + '"]');
    }

    function send(msg) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function showFlash(text) {
        var slot = document.getElementById('fieldset-flash');
        if (!slot) return;
        slot.textContent = text;
        slot.hidden = false;
        setTimeout(function() { slot.hidden = true; }, 4000);
    }

    function applyErrors(errors) {
        form.querySelectorAll('[data-error-for]').forEach(function(slot) {
            var name = slot.getAttribute('data-error-for');
            var message = errors[name];
            if (message) {
                slot.textContent = message;
                slot.hidden = false;
            } else {
                slot.textContent = '';
                slot.hidden = true;
            }
            var input = fieldInput(name);
            if (input) input.setAttribute('aria-invalid', message ? 'true' : 'false');
        });
    }

    function applyOp(op) {
        switch (op.op) {
            case 'hello':
                break;

            case 'errors':
                applyErrors(op.errors || {});
                break;

            case 'value': {
                var input = fieldInput(op.field);
                if (input) input.value = op.value == null ? '' : op.value;
                break;
            }

            case 'focus': {
                var target = fieldInput(op.field);
                if (target) target.focus();
                break;
            }

            case 'submitted':
                showFlash(op.message ? op.message : 'Submitted · ' + (op.id || ''));
                break;

            case 'reload':
                location.reload();
                break;
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var frame;
            try {
                frame = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            (frame.ops || []).forEach(applyOp);
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    form.addEventListener('input', function(e) {
        var input = e.target;
        if (!input.name) return;
        send({type: 'change', field: input.name, value: input.value});
    });

    form.addEventListener('focusout', function(e) {
        var input = e.target;
        if (!input.name) return;
        send({type: 'blur', field: input.name, value: input.value});
    });

    form.addEventListener('submit', function(e) {
        e.preventDefault();
        send({type: 'submit'});
    });

    connect();
})();
`
