package services

type SMSServiceInterface interface {
	SendSMS(to, message string) error
	SendOrderConfirmation(phoneNumber, customerName, orderDetails string) error
}
