package models

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nitn/phd-admission/internal/pkg/validation"
)

func init() {
	v := validation.Global()
	v.RegisterEnum("department", Departments)
	v.RegisterDateType(Date{}, func(field reflect.Value) time.Time {
		return field.Interface().(Date).Time
	})

	v.RegisterStructRule(personalRules, PersonalDetails{})
	v.RegisterStructRule(qualificationRules, Qualification{})
	v.RegisterStructRule(additionalQualificationRules, AdditionalQualification{})
	v.RegisterStructRule(experienceRules, Experience{})
	v.RegisterStructRule(paymentRules, Payment{})
}

func personalRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(PersonalDetails)
	if p.MaritalStatus == "Single" && p.SpouseName != "" {
		sl.ReportError(p.SpouseName, "spouse_name", "SpouseName", "spouse_single", "")
	}
}

func qualificationRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(Qualification)
	limit := 100.0
	if q.MarksType == "CGPA" {
		limit = q.MaxCGPA
		if limit == 0 {
			limit = 10
		}
	}
	if q.MarksObtained > limit {
		sl.ReportError(q.MarksObtained, "marks_obtained", "MarksObtained", "marks_range", "")
	}
}

func additionalQualificationRules(sl validator.StructLevel) {
	aq := sl.Current().Interface().(AdditionalQualification)
	if aq.ExamType == ExamGATE && aq.Score == nil {
		sl.ReportError(aq.Score, "score", "Score", "required", "")
	}
	if aq.ExamType == ExamNET && aq.DateOfExam.IsZero() {
		sl.ReportError(aq.DateOfExam, "date_of_exam", "DateOfExam", "required", "")
	}
}

func experienceRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(Experience)
	if !e.PeriodFrom.IsZero() && !e.PeriodTo.IsZero() && e.PeriodTo.Before(e.PeriodFrom.Time) {
		sl.ReportError(e.PeriodTo, "period_to", "PeriodTo", "period_order", "")
	}
}

func paymentRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(Payment)
	if p.Screenshot.URL == "" {
		sl.ReportError(p.Screenshot.URL, "screenshot.url", "URL", "required", "")
	}
}
