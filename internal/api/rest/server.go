package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin.Engine for the execution core's REST surface,
// wiring the teacher's recovery/logging middleware ahead of every route
// group (spec §6 endpoint table).
func NewRouter(deps *Deps) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(deps.Log))
	router.Use(RequestLogger(deps.Log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	apiV1 := router.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		{
			admin.POST("/hosts", deps.RegisterHost)
			admin.POST("/devices", deps.RegisterDevice)
			admin.POST("/capabilities", deps.SetCapabilities)
		}

		control := apiV1.Group("/control")
		{
			control.POST("/take", deps.TakeControl)
			control.POST("/release", deps.ReleaseControl)
			control.GET("/locked/:device_id", deps.Locked)
		}

		capabilities := apiV1.Group("/capabilities")
		{
			capabilities.GET("/actions/:device_id", deps.ListActions)
			capabilities.GET("/verifications/:device_id", deps.ListVerifications)
		}

		navigation := apiV1.Group("/navigation")
		{
			navigation.GET("/nodes", deps.ListNodes)
			navigation.POST("/execute", deps.NavigateExecute)
		}

		apiV1.POST("/actions/execute", deps.ExecuteActions)
		apiV1.POST("/verifications/execute", deps.ExecuteVerification)

		plans := apiV1.Group("/plans")
		{
			plans.POST("/generate", deps.GeneratePlan)
			plans.POST("/execute", deps.ExecutePlan)
		}

		testcases := apiV1.Group("/testcases")
		{
			testcases.POST("/save", deps.SaveTestCase)
			testcases.GET("/load", deps.LoadTestCase)
			testcases.GET("/list", deps.ListTestCases)
		}

		execution := apiV1.Group("/execution")
		{
			execution.GET("/status/:execution_id", deps.ExecutionStatus)
			execution.POST("/cancel/:execution_id", deps.ExecutionCancel)
		}
	}

	router.GET("/ws/executions", deps.WatchExecutions)

	return router
}
