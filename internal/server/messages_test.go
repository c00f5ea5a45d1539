package server

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nbukhari/diwan/internal/models"
)

func TestMessageSendAndInbox(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedProfile(t, models.RoleManager)
	employee := env.seedProfile(t, models.RoleEmployee)

	w := env.request(t, &manager, http.MethodPost, "/api/messages", gin.H{
		"receiver_id": employee.ID, "subject": "تسليم المشروع", "body": "يرجى تسليم المشروع غداً",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("send: code = %d, body = %s", w.Code, w.Body.String())
	}
	var sent models.Message
	decode(t, w, &sent)
	if sent.SenderID != manager.ID || sent.ReceiverID != employee.ID {
		t.Errorf("message participants = %s -> %s", sent.SenderID, sent.ReceiverID)
	}

	// Missing fields are rejected.
	w = env.request(t, &manager, http.MethodPost, "/api/messages", gin.H{
		"receiver_id": employee.ID, "subject": "بدون نص",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("send without body: code = %d, want 422", w.Code)
	}

	// Receiver's inbox has it, sender's inbox does not.
	w = env.request(t, &employee, http.MethodGet, "/api/messages", nil)
	var inbox []models.Message
	decode(t, w, &inbox)
	if len(inbox) != 1 || inbox[0].Subject != "تسليم المشروع" {
		t.Fatalf("inbox = %+v", inbox)
	}
	w = env.request(t, &manager, http.MethodGet, "/api/messages", nil)
	inbox = nil
	decode(t, w, &inbox)
	if len(inbox) != 0 {
		t.Errorf("sender inbox = %+v, want empty", inbox)
	}
	w = env.request(t, &manager, http.MethodGet, "/api/messages?box=outbox", nil)
	var outbox []models.Message
	decode(t, w, &outbox)
	if len(outbox) != 1 {
		t.Errorf("outbox = %+v, want the sent message", outbox)
	}

	// The receiver got a notification pointing at the message.
	var notifs []models.Notification
	if err := env.db.Where("user_id = ?", employee.ID).Find(&notifs).Error; err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != NotificationTypeMessage {
		t.Fatalf("notifications = %+v", notifs)
	}
	if notifs[0].Link != "/messages?msg="+sent.ID {
		t.Errorf("notification link = %q", notifs[0].Link)
	}
}

func TestMessageReadClearsNotification(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedProfile(t, models.RoleManager)
	employee := env.seedProfile(t, models.RoleEmployee)

	w := env.request(t, &manager, http.MethodPost, "/api/messages", gin.H{
		"receiver_id": employee.ID, "subject": "اجتماع", "body": "الساعة العاشرة",
	})
	var sent models.Message
	decode(t, w, &sent)

	// The sender cannot mark the receiver's copy read.
	w = env.request(t, &manager, http.MethodPost, "/api/messages/"+sent.ID+"/read", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("sender read: code = %d, want 404", w.Code)
	}

	w = env.request(t, &employee, http.MethodPost, "/api/messages/"+sent.ID+"/read", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("read: code = %d, body = %s", w.Code, w.Body.String())
	}

	var got models.Message
	if err := env.db.First(&got, "id = ?", sent.ID).Error; err != nil {
		t.Fatalf("get message: %v", err)
	}
	if !got.IsRead || got.ReadAt == nil {
		t.Errorf("message not marked read: %+v", got)
	}
	var notif models.Notification
	if err := env.db.First(&notif, "user_id = ?", employee.ID).Error; err != nil {
		t.Fatalf("get notification: %v", err)
	}
	if !notif.Read {
		t.Error("linked notification still unread")
	}
}

func TestMessageDeleteParticipantsOnly(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedProfile(t, models.RoleManager)
	employee := env.seedProfile(t, models.RoleEmployee)
	outsider := env.seedProfile(t, models.RoleEmployee)

	w := env.request(t, &manager, http.MethodPost, "/api/messages", gin.H{
		"receiver_id": employee.ID, "subject": "سري", "body": "للمستلم فقط",
	})
	var sent models.Message
	decode(t, w, &sent)

	w = env.request(t, &outsider, http.MethodDelete, "/api/messages/"+sent.ID, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("outsider delete: code = %d, want 403", w.Code)
	}
	w = env.request(t, &employee, http.MethodDelete, "/api/messages/"+sent.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("receiver delete: code = %d", w.Code)
	}
	var n int64
	if err := env.db.Model(&models.Message{}).Where("id = ?", sent.ID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Error("message still present after delete")
	}
}

func TestAttachmentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedProfile(t, models.RoleManager)
	employee := env.seedProfile(t, models.RoleEmployee)

	w := env.request(t, &manager, http.MethodPost, "/api/tasks", gin.H{"title": "Documented"})
	var created models.Task
	decode(t, w, &created)

	w = env.request(t, &employee, http.MethodPost, "/api/tasks/"+created.ID+"/attachments", gin.H{
		"file_name": "تقرير.pdf",
		"file_url":  "https://files.example.com/abc/report.pdf",
		"file_size": 20480,
		"file_type": "application/pdf",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create attachment: code = %d, body = %s", w.Code, w.Body.String())
	}
	var attachment models.TaskAttachment
	decode(t, w, &attachment)
	if attachment.UploadedBy == nil || *attachment.UploadedBy != employee.ID {
		t.Errorf("uploaded_by = %v, want %s", attachment.UploadedBy, employee.ID)
	}

	w = env.request(t, &employee, http.MethodPost, "/api/tasks/"+created.ID+"/attachments", gin.H{
		"file_url": "https://files.example.com/no-name",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("create without name: code = %d, want 422", w.Code)
	}

	w = env.request(t, &manager, http.MethodGet, "/api/tasks/"+created.ID+"/attachments", nil)
	var attachments []models.TaskAttachment
	decode(t, w, &attachments)
	if len(attachments) != 1 || attachments[0].FileName != "تقرير.pdf" {
		t.Fatalf("attachments = %+v", attachments)
	}

	other := env.seedProfile(t, models.RoleEmployee)
	w = env.request(t, &other, http.MethodDelete, "/api/attachments/"+attachment.ID, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete by non-uploader: code = %d, want 403", w.Code)
	}
	w = env.request(t, &employee, http.MethodDelete, "/api/attachments/"+attachment.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete by uploader: code = %d", w.Code)
	}
}
