/*
Package monitoring provides Prometheus metrics for the desktop service.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.RecordFSOp("create_file", ok)

	timer := monitoring.NewTimer(metrics, "s3", "save")
	err := store.Save(ctx, key, data)
	timer.Stop(status)

Every Record method accepts a nil receiver, so components can be built
without metrics in tests.
*/
package monitoring
