package http

import (
	"ClassBridge/internal/delivery/http/controllers"
	"ClassBridge/internal/models"
	"ClassBridge/internal/service"
	"ClassBridge/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	authMW := controllers.NewAuthMiddlewareProvider(l, u.Auth)

	statusController := controllers.NewStatusHandler()
	authController := controllers.NewAuthHandler(l, u.Auth)
	userController := controllers.NewUserHandler(l, u.Users)
	courseController := controllers.NewCourseHandler(l, u.Courses, u.Enrollments)
	assignmentController := controllers.NewAssignmentHandler(l, u.Assignments)
	submissionController := controllers.NewSubmissionHandler(l, u.Submissions)

	v1 := r.Group("/v1", controllers.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", authMW.AuthMiddleware, authController.Me)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/refresh", authController.Refresh)
			auth.POST("/logout", authMW.AuthMiddleware, authController.Logout)
		}

		users := v1.Group("/users", authMW.AuthMiddleware)
		{
			users.GET("/:user_id", userController.GetByID)

			admin := users.Group("", controllers.RequireRoles(models.AdminRole))
			{
				admin.POST("", userController.Create)
				admin.GET("", userController.List)
				admin.GET("/instructors", userController.ListInstructors)
				admin.PUT("/:user_id", userController.Update)
				admin.DELETE("/:user_id", userController.Delete)
			}
		}

		courses := v1.Group("/courses")
		{
			courses.GET("/published", courseController.ListPublished)

			authed := courses.Group("", authMW.AuthMiddleware)
			{
				authed.GET("", courseController.List)
				authed.GET("/search", courseController.Search)
				authed.GET("/:course_id", courseController.GetByID)
				authed.GET("/:course_id/assignments", assignmentController.ListForCourse)

				admin := authed.Group("", controllers.RequireRoles(models.AdminRole))
				{
					admin.POST("", courseController.Create)
					admin.DELETE("/:course_id", courseController.Delete)
				}

				staff := authed.Group("", controllers.RequireRoles(models.AdminRole, models.InstructorRole))
				{
					staff.PUT("/:course_id", courseController.Update)
					staff.GET("/:course_id/enrollments", courseController.Roster)
				}

				student := authed.Group("", controllers.RequireRoles(models.StudentRole))
				{
					student.POST("/:course_id/enroll", courseController.Enroll)
				}
			}
		}

		enrollments := v1.Group("/enrollments", authMW.AuthMiddleware)
		{
			enrollments.GET("/my", courseController.MyEnrollments)
			enrollments.GET("/student/:student_id", controllers.RequireRoles(models.AdminRole), courseController.StudentEnrollments)
		}

		assignments := v1.Group("/assignments", authMW.AuthMiddleware)
		{
			assignments.GET("", assignmentController.List)
			assignments.GET("/:assignment_id", assignmentController.GetByID)

			staff := assignments.Group("", controllers.RequireRoles(models.AdminRole, models.InstructorRole))
			{
				staff.POST("", assignmentController.Create)
				staff.PUT("/:assignment_id", assignmentController.Update)
				staff.DELETE("/:assignment_id", assignmentController.Delete)
				staff.PUT("/:assignment_id/attachments", assignmentController.UploadAttachment)
				staff.GET("/:assignment_id/submissions", submissionController.ListForAssignment)
			}
		}

		submissions := v1.Group("/submissions", authMW.AuthMiddleware)
		{
			submissions.GET("", submissionController.List)
			submissions.GET("/:submission_id", submissionController.GetByID)

			student := submissions.Group("", controllers.RequireRoles(models.StudentRole))
			{
				student.POST("", submissionController.Create)
				student.PUT("/:submission_id", submissionController.Revise)
				student.PUT("/:submission_id/attachments", submissionController.UploadAttachment)
			}

			staff := submissions.Group("", controllers.RequireRoles(models.AdminRole, models.InstructorRole))
			{
				staff.POST("/:submission_id/grade", submissionController.Grade)
			}
		}
	}
	return r
}
