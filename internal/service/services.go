package service

import (
	"ClassBridge/internal/service/assignment"
	"ClassBridge/internal/service/auth"
	"ClassBridge/internal/service/course"
	"ClassBridge/internal/service/enrollment"
	"ClassBridge/internal/service/submission"
	"ClassBridge/internal/service/user"
)

type Collection struct {
	Auth        *auth.AuthService
	Users       *user.Service
	Courses     *course.Service
	Enrollments *enrollment.LedgerService
	Assignments *assignment.CatalogService
	Submissions *submission.WorkflowService
}
