package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/iatechsabana/cotecmar/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ventana tracks request counts per IP within a sliding window.
type ventana struct {
	count int
	hasta time.Time
	mu    sync.Mutex
}

type limitador struct {
	mu       sync.Mutex
	porIP    map[string]*ventana
	limite   int
	duracion time.Duration
	mensaje  string
}

func nuevoLimitador(limite int, duracion time.Duration, mensaje string) *limitador {
	l := &limitador{
		porIP:    make(map[string]*ventana),
		limite:   limite,
		duracion: duracion,
		mensaje:  mensaje,
	}
	go l.purgar()
	return l
}

func (l *limitador) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		v, ok := l.porIP[ip]
		if !ok {
			v = &ventana{}
			l.porIP[ip] = v
		}
		l.mu.Unlock()

		v.mu.Lock()
		defer v.mu.Unlock()

		now := time.Now()
		if now.After(v.hasta) {
			v.count = 0
			v.hasta = now.Add(l.duracion)
		}

		v.count++
		if v.count > l.limite {
			c.Header("Retry-After", v.hasta.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// purgar drops expired windows so IPs that never return do not accumulate.
func (l *limitador) purgar() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purgadas := 0
		for ip, v := range l.porIP {
			v.mu.Lock()
			if now.After(v.hasta) {
				delete(l.porIP, ip)
				purgadas++
			}
			v.mu.Unlock()
		}
		restantes := len(l.porIP)
		l.mu.Unlock()
		if purgadas > 0 {
			log.Debug().Int("purgadas", purgadas).Int("restantes", restantes).
				Msg("rate limiter: ventanas expiradas purgadas")
		}
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return nuevoLimitador(20, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.").handler()
}

// RateLimiter is the general sliding-window limiter applied to the whole API.
func RateLimiter(limite int, duracion time.Duration) gin.HandlerFunc {
	return nuevoLimitador(limite, duracion,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}
