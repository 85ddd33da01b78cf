package service

import (
	"fmt"

	"github.com/deptsched/timetable-api/internal/domain"
	"github.com/deptsched/timetable-api/internal/dto"
)

func toDepartmentData(req dto.CreateRunRequest) (*domain.DepartmentData, error) {
	data := &domain.DepartmentData{
		ClassesPerYear:        req.ClassesPerYear,
		SubjectsByYear:        make(map[domain.Year][]domain.Subject),
		CourseStructure:       make(map[domain.Subject]domain.CourseStructure),
		TeacherAssignments:    make(map[domain.Year]map[domain.Subject]domain.Teacher),
		LabTeacherAssignments: make(map[domain.Year]map[domain.Subject]domain.Teacher),
		TeacherAvailability:   make(map[domain.Teacher]map[domain.Day][]domain.Slot),
	}

	for _, y := range req.Years {
		data.Years = append(data.Years, domain.Year(y))
	}
	for _, t := range req.Teachers {
		data.Teachers = append(data.Teachers, domain.Teacher(t))
	}
	for _, r := range req.Rooms {
		data.Rooms = append(data.Rooms, domain.Room(r))
	}
	for _, r := range req.LabRooms {
		data.LabRooms = append(data.LabRooms, domain.Room(r))
	}
	for year, subjects := range req.SubjectsByYear {
		for _, s := range subjects {
			data.SubjectsByYear[domain.Year(year)] = append(data.SubjectsByYear[domain.Year(year)], domain.Subject(s))
		}
	}
	for _, cs := range req.CourseStructure {
		data.CourseStructure[domain.Subject(cs.Subject)] = domain.CourseStructure{
			RequiredLectures: cs.RequiredLectures,
			RequiredLabs:     cs.RequiredLabs,
			LabDurationHours: cs.LabDurationHours,
			LectureDuration:  cs.LectureDuration,
		}
	}
	for _, a := range req.LectureAssignments {
		year := domain.Year(a.Year)
		if data.TeacherAssignments[year] == nil {
			data.TeacherAssignments[year] = make(map[domain.Subject]domain.Teacher)
		}
		data.TeacherAssignments[year][domain.Subject(a.Subject)] = domain.Teacher(a.Teacher)
	}
	for _, a := range req.LabAssignments {
		year := domain.Year(a.Year)
		if data.LabTeacherAssignments[year] == nil {
			data.LabTeacherAssignments[year] = make(map[domain.Subject]domain.Teacher)
		}
		data.LabTeacherAssignments[year][domain.Subject(a.Subject)] = domain.Teacher(a.Teacher)
	}
	for teacher, byDay := range req.TeacherAvailability {
		data.TeacherAvailability[domain.Teacher(teacher)] = make(map[domain.Day][]domain.Slot)
		for _, entry := range byDay {
			var slots []domain.Slot
			for _, s := range entry.Slots {
				slots = append(slots, domain.Slot(s))
			}
			data.TeacherAvailability[domain.Teacher(teacher)][domain.Day(entry.Day)] = slots
		}
	}

	if len(data.Years) == 0 {
		return nil, fmt.Errorf("at least one year must be configured")
	}
	return data, nil
}

func labToView(tm *domain.TimeModel, a domain.LabAssignment) dto.LabAssignmentView {
	slots := a.Slots(tm)
	return dto.LabAssignmentView{
		Class:   string(a.Class),
		Subject: string(a.Subject),
		Batch:   string(a.Batch),
		Day:     string(a.Day),
		Start:   string(slots[0]),
		End:     string(slots[1]),
		Teacher: string(a.Teacher),
		Room:    string(a.LabRoom),
	}
}

func lectureToView(a domain.LectureAssignment) dto.LectureAssignmentView {
	return dto.LectureAssignmentView{
		Class:        string(a.Class),
		Subject:      string(a.Subject),
		LectureIndex: a.LectureIndex,
		Day:          string(a.Day),
		Slot:         string(a.Slot),
		Teacher:      string(a.Teacher),
		Room:         string(a.LectureRoom),
	}
}
