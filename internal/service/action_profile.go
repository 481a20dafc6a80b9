package service

import (
	"context"
	"strings"
	"studylife-go/internal/model"
	"studylife-go/internal/repository"
)

func (s *actionService) updateUser(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p userPayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	u, err := tx.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, entityUser)
	}

	updated := []string{}
	set := func(field string, dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			updated = append(updated, field)
		}
	}
	if p.DisplayName == nil {
		p.DisplayName = p.Name
	}
	set("displayName", &u.DisplayName, p.DisplayName)
	set("university", &u.University, p.University)
	set("major", &u.Major, p.Major)
	set("academicYear", &u.AcademicYear, p.AcademicYear)
	set("bio", &u.Bio, p.Bio)

	if len(updated) > 0 {
		if err := tx.Users.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	return &actionOutcome{data: map[string]interface{}{"userId": u.ID, "updated": updated}}, nil
}

func (s *actionService) addCourse(ctx context.Context, tx *repository.Store, userID uint, data map[string]interface{}) (*actionOutcome, error) {
	var p coursePayload
	if err := decodeAction(data, &p); err != nil {
		return nil, err
	}
	name := firstNonEmpty(p.Name, p.CourseName)
	if name == "" {
		return nil, invalidAction("name is required")
	}
	c := &model.Course{
		UserID:     userID,
		Name:       name,
		Code:       p.Code,
		Instructor: p.Instructor,
		Credits:    p.Credits,
		Semester:   p.Semester,
		Schedule:   p.Schedule,
	}
	if err := tx.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return &actionOutcome{data: map[string]interface{}{"courseId": c.ID, "name": c.Name}}, nil
}
