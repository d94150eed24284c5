package service

import (
	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/manager"
)

func toAuditDTO(a domain.AuditInfo) dto.AuditDTO {
	return dto.AuditDTO{
		CreatedAt:  a.CreatedAt,
		CreatedBy:  a.CreatedBy,
		ModifiedAt: a.ModifiedAt,
		ModifiedBy: a.ModifiedBy,
	}
}

func fromAuditDTO(a dto.AuditDTO) domain.AuditInfo {
	return domain.AuditInfo{
		CreatedAt:  a.CreatedAt,
		CreatedBy:  a.CreatedBy,
		ModifiedAt: a.ModifiedAt,
		ModifiedBy: a.ModifiedBy,
	}
}

func toAppUserDTO(u *domain.AppUser) dto.AppUserDTO {
	return dto.AppUserDTO{
		ID:             u.ID,
		IdentityUserID: u.IdentityUserID,
		DisplayName:    u.DisplayName,
		Username:       u.Username,
		Email:          u.Email,
		Phone:          u.Phone,
		UserType:       u.UserType,
		Active:         u.Active,
		AuditDTO:       toAuditDTO(u.AuditInfo),
	}
}

func fromAppUserDTO(d dto.AppUserDTO) domain.AppUser {
	return domain.AppUser{
		ID:             d.ID,
		IdentityUserID: d.IdentityUserID,
		DisplayName:    d.DisplayName,
		Username:       d.Username,
		Email:          d.Email,
		Phone:          d.Phone,
		UserType:       d.UserType,
		Active:         d.Active,
		AuditInfo:      fromAuditDTO(d.AuditDTO),
	}
}

func toUpdateAppUserInput(r dto.UpdateAppUserRequest) manager.UpdateAppUserInput {
	return manager.UpdateAppUserInput{
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Phone:       r.Phone,
		UserType:    r.UserType,
		Active:      r.Active,
	}
}

func toServicePlanDTO(p *domain.ServicePlan) dto.ServicePlanDTO {
	return dto.ServicePlanDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		UsageCount:  p.UsageCount,
		AuditDTO:    toAuditDTO(p.AuditInfo),
	}
}

func fromServicePlanDTO(d dto.ServicePlanDTO) domain.ServicePlan {
	return domain.ServicePlan{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		UsageCount:  d.UsageCount,
		AuditInfo:   fromAuditDTO(d.AuditDTO),
	}
}

func toServicePlanInput(r dto.CreateUpdateServicePlanRequest) manager.ServicePlanInput {
	return manager.ServicePlanInput{Name: r.Name, Description: r.Description, Price: r.Price}
}

func toUserServicePlanDTO(s *domain.UserServicePlan, planName string) dto.UserServicePlanDTO {
	return dto.UserServicePlanDTO{
		ID:              s.ID,
		AppUserID:       s.AppUserID,
		ServicePlanID:   s.ServicePlanID,
		ServicePlanName: planName,
		SubscribedAt:    s.SubscribedAt,
	}
}

func toSupportTicketDTO(t *domain.SupportTicket) dto.SupportTicketDTO {
	return dto.SupportTicketDTO{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      t.Status,
		OwnerID:     t.OwnerID,
		AssigneeID:  t.AssigneeID,
		ClosedAt:    t.ClosedAt,
		AuditDTO:    toAuditDTO(t.AuditInfo),
	}
}

func fromSupportTicketDTO(d dto.SupportTicketDTO) domain.SupportTicket {
	return domain.SupportTicket{
		ID:          d.ID,
		Subject:     d.Subject,
		Description: d.Description,
		Status:      d.Status,
		OwnerID:     d.OwnerID,
		AssigneeID:  d.AssigneeID,
		ClosedAt:    d.ClosedAt,
		AuditInfo:   fromAuditDTO(d.AuditDTO),
	}
}

func toCreateTicketInput(r dto.CreateTicketRequest) manager.CreateTicketInput {
	return manager.CreateTicketInput{Subject: r.Subject, Description: r.Description}
}

func toTicketCommentDTO(c *domain.TicketComment) dto.TicketCommentDTO {
	return dto.TicketCommentDTO{
		ID:        c.ID,
		TicketID:  c.TicketID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

func toEmailDTO(e *domain.Email) dto.EmailDTO {
	return dto.EmailDTO{
		ID:              e.ID,
		RecipientUserID: e.RecipientUserID,
		Address:         e.Address,
		EmailType:       e.EmailType,
		TemplateID:      e.TemplateID,
		Subject:         e.Subject,
		Body:            e.Body,
		SentAt:          e.SentAt,
		IsSuccess:       e.IsSuccess,
		ErrorMessage:    e.ErrorMessage,
	}
}

func toReportDTO(r *domain.Report, templateName string) dto.ReportDTO {
	return dto.ReportDTO{
		ID:                 r.ID,
		ReportTemplateID:   r.ReportTemplateID,
		ReportTemplateName: templateName,
		TicketID:           r.TicketID,
		ReportType:         r.ReportType,
		Subject:            r.Subject,
		Content:            r.Content,
		GeneratedAt:        r.GeneratedAt,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
	}
}

func toReportTemplateDTO(t *domain.ReportTemplate) dto.ReportTemplateDTO {
	return dto.ReportTemplateDTO{
		ID:           t.ID,
		Name:         t.Name,
		TemplateKey:  t.TemplateKey,
		TemplateType: t.TemplateType,
		ReportType:   t.ReportType,
		Subject:      t.Subject,
		CreatedAt:    t.CreatedAt,
	}
}

func toReportTemplateInput(r dto.CreateReportTemplateRequest) manager.ReportTemplateInput {
	return manager.ReportTemplateInput{
		Name:         r.Name,
		TemplateKey:  r.TemplateKey,
		TemplateType: r.TemplateType,
		ReportType:   r.ReportType,
		Subject:      r.Subject,
	}
}
