package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	PostsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total posts created, by whether they were published immediately",
	}, []string{"published"})

	FollowActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follow_actions_total",
		Help: "Total successful follow and unfollow actions",
	}, []string{"action"})

	ProfilesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "profiles_created_total",
		Help: "Total profiles created",
	})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(FollowActions)
	prometheus.MustRegister(ProfilesCreated)
}

// MetricsMiddleware observes request latency by route template, so
// /api/posts/:id/ is one series regardless of id.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
