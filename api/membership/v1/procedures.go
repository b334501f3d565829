package membershipv1

const (
	// InvitationServiceName is the fully-qualified name of the InvitationService service.
	InvitationServiceName = "membership.v1.InvitationService"
	// UserServiceName is the fully-qualified name of the UserService service.
	UserServiceName = "membership.v1.UserService"
	// OrganizationServiceName is the fully-qualified name of the OrganizationService service.
	OrganizationServiceName = "membership.v1.OrganizationService"
	// AuditServiceName is the fully-qualified name of the AuditService service.
	AuditServiceName = "membership.v1.AuditService"
)

// Procedure paths, "/<service>/<method>".
const (
	InvitationServiceSendProcedure                = "/membership.v1.InvitationService/Send"
	InvitationServiceSetStatusProcedure           = "/membership.v1.InvitationService/SetStatus"
	InvitationServiceDeleteProcedure              = "/membership.v1.InvitationService/Delete"
	InvitationServiceGetProcedure                 = "/membership.v1.InvitationService/Get"
	InvitationServiceListForUserProcedure         = "/membership.v1.InvitationService/ListForUser"
	InvitationServiceListForOrganizationProcedure = "/membership.v1.InvitationService/ListForOrganization"

	UserServiceCreateProcedure            = "/membership.v1.UserService/Create"
	UserServiceUpdateProcedure            = "/membership.v1.UserService/Update"
	UserServiceDeleteProcedure            = "/membership.v1.UserService/Delete"
	UserServiceActivateProcedure          = "/membership.v1.UserService/Activate"
	UserServiceDeactivateProcedure        = "/membership.v1.UserService/Deactivate"
	UserServiceGetProcedure               = "/membership.v1.UserService/Get"
	UserServiceGetByEmailProcedure        = "/membership.v1.UserService/GetByEmail"
	UserServiceListProcedure              = "/membership.v1.UserService/List"
	UserServiceSearchProcedure            = "/membership.v1.UserService/Search"
	UserServiceListOrganizationsProcedure = "/membership.v1.UserService/ListOrganizations"

	OrganizationServiceCreateProcedure              = "/membership.v1.OrganizationService/Create"
	OrganizationServiceUpdateProcedure              = "/membership.v1.OrganizationService/Update"
	OrganizationServiceDeleteProcedure              = "/membership.v1.OrganizationService/Delete"
	OrganizationServiceGetProcedure                 = "/membership.v1.OrganizationService/Get"
	OrganizationServiceGetByRegistryNumberProcedure = "/membership.v1.OrganizationService/GetByRegistryNumber"
	OrganizationServiceSearchProcedure              = "/membership.v1.OrganizationService/Search"
	OrganizationServiceListUsersProcedure           = "/membership.v1.OrganizationService/ListUsers"

	AuditServiceListProcedure = "/membership.v1.AuditService/List"
)
