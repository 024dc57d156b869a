package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/services/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var classroomOrdering = lessFuncs[classroom.Classroom]{
	"name":       func(a, b classroom.Classroom) bool { return a.Name < b.Name },
	"created_at": func(a, b classroom.Classroom) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

type (
	classroomApi struct {
		ServerDeps
	}

	memberResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name,omitempty"`
		Email     string `json:"email,omitempty"`
		AvatarURL string `json:"avatar_url,omitempty"`
	}
)

func registerClassroomAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := classroomApi{deps}

	cg := g.Group("/classrooms", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, teacherMiddleware())
	cg.POST("/join", api.join)
	cg.GET("/code/:code", api.retrieveByCode)

	// detail endpoints
	dg := cg.Group("/:id", classroomMiddleware(api.ClassroomSvc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, ownerMiddleware())
	dg.DELETE("", api.destroy, ownerMiddleware())
	dg.POST("/leave", api.leave)
	dg.GET("/members", api.members)
	dg.GET("/grades.xlsx", api.grades, ownerMiddleware())
	dg.POST("/grades/email", api.emailGrades, ownerMiddleware())
}

func contextClassroom(ctx echo.Context) (classroom.Classroom, error) {
	c, ok := ctx.Get(objectKey).(classroom.Classroom)
	if !ok {
		return c, errors.Wrap(errObjNotFoundInCtx, "retrieving classroom from context")
	}
	return c, nil
}

// query lists the classrooms of the signed-in user, or searches all classrooms
// when teacher_id or search is given.
func (api *classroomApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(classroom.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []classroom.Classroom{})
	}
	filter.Clean()

	rctx := ctx.Request().Context()
	var cls []classroom.Classroom
	if filter.IsEmpty() {
		cls, err = api.ClassroomSvc.ListForUser(rctx, claims.Subject)
	} else {
		cls, err = api.ClassroomSvc.List(rctx, *filter)
	}
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	orderBy(cls, *ordering, classroomOrdering)
	if cls == nil {
		cls = []classroom.Classroom{}
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classroomApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data classroom.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	data.Clean()
	if err := api.Validate.Struct(data); err != nil {
		return err
	}
	data.TeacherID = claims.Subject
	data.TeacherName = claims.Name

	c, sync, err := api.ClassroomSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	c, err := contextClassroom(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classroomApi) retrieveByCode(ctx echo.Context) error {
	c, err := api.ClassroomSvc.GetByCode(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "finding classroom by code")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classroomApi) update(ctx echo.Context) error {
	c, err := contextClassroom(ctx)
	if err != nil {
		return err
	}

	var data classroom.UpdateClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}

	c, sync, err := api.ClassroomSvc.Update(ctx.Request().Context(), data.Apply(c))
	if err != nil {
		return errors.Wrap(err, "updating classroom")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, c)
}

func (api *classroomApi) destroy(ctx echo.Context) error {
	c, err := contextClassroom(ctx)
	if err != nil {
		return err
	}

	sync, err := api.ClassroomSvc.Delete(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	setSyncHeaders(ctx, sync)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classroomApi) join(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data classroom.JoinClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinClassroom")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}

	c, sync, err := api.ClassroomSvc.JoinByCode(ctx.Request().Context(), data.Code, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "joining classroom")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, c)
}

func (api *classroomApi) leave(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	c, err := contextClassroom(ctx)
	if err != nil {
		return err
	}

	sync, err := api.ClassroomSvc.Leave(ctx.Request().Context(), c.ID, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "leaving classroom")
	}
	setSyncHeaders(ctx, sync)
	return ctx.NoContent(http.StatusNoContent)
}

// members lists member ids, with the name and email of those whose profile is cached.
func (api *classroomApi) members(ctx echo.Context) error {
	c, err := contextClassroom(ctx)
	if err != nil {
		return err
	}

	ids, err := api.ClassroomSvc.ListMembers(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "listing members")
	}
	profiles, err := api.ProfileSvc.Cached(ids...)
	if err != nil {
		return errors.Wrap(err, "loading cached profiles")
	}

	res := make([]memberResponse, len(ids))
	for i, id := range ids {
		res[i].ID = id
	}
	byID := make(map[string]int, len(ids))
	for i, id := range ids {
		byID[id] = i
	}
	for _, p := range profiles {
		m := &res[byID[p.ID]]
		m.Name, m.Email, m.AvatarURL = p.Name, p.Email, p.AvatarURL
	}
	return ctx.JSON(http.StatusOK, res)
}

// gradeSheet builds the xlsx grade sheet of c, naming students from the cached profiles.
func (api *classroomApi) gradeSheet(ctx echo.Context, c classroom.Classroom) (*bytes.Buffer, error) {
	as, err := api.AssignmentSvc.List(ctx.Request().Context(), assignment.QueryFilter{ClassroomID: c.ID})
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}
	studentIDs := make([]string, 0, len(as))
	for _, a := range as {
		if a.StudentID != "" {
			studentIDs = append(studentIDs, a.StudentID)
		}
	}
	profiles, err := api.ProfileSvc.Cached(studentIDs...)
	if err != nil {
		return nil, errors.Wrap(err, "loading cached profiles")
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}

	buf := new(bytes.Buffer)
	if err := export.WriteGradeSheet(buf, c, as, names); err != nil {
		return nil, errors.Wrap(err, "exporting grades")
	}
	return buf, nil
}

func gradeSheetFilename(c classroom.Classroom) string {
	return "grades-" + c.EnrollmentCode + ".xlsx"
}

// grades sends the classroom grade sheet as an xlsx attachment.
func (api *classroomApi) grades(ctx echo.Context) error {
	c, err := contextClassroom(ctx)
	if err != nil {
		return err
	}
	buf, err := api.gradeSheet(ctx, c)
	if err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", gradeSheetFilename(c)))
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// emailGrades mails the grade sheet to the signed-in teacher.
func (api *classroomApi) emailGrades(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errNoEmailAddress)
	}
	c, err := contextClassroom(ctx)
	if err != nil {
		return err
	}
	buf, err := api.gradeSheet(ctx, c)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: claims.Name, Address: claims.Email}},
		Subject: "Grades: " + c.Name,
		BodyStr: fmt.Sprintf("The grade sheet of %s is attached.", c.Name),
	}
	if err := msg.Attach(buf, gradeSheetFilename(c), xlsxContentType); err != nil {
		return errors.Wrap(err, "attaching grade sheet")
	}
	api.Email.SendMessages(msg)
	return ctx.NoContent(http.StatusAccepted)
}
