package model

// User is the core "User" resource defined in RFC 7643 section 4.1, with the
// enterprise extension attached under its schema URN.
type User struct {
	Schemas    []string `json:"schemas,omitempty"`
	ID         string   `json:"id,omitempty"`
	ExternalID string   `json:"externalId,omitempty"`
	Meta       *Meta    `json:"meta,omitempty"`

	Active            bool                  `json:"active,omitempty"`
	Addresses         []UserAddress         `json:"addresses,omitempty"`
	DisplayName       string                `json:"displayName,omitempty"`
	Emails            []UserEmail           `json:"emails,omitempty"`
	Entitlements      []UserEntitlement     `json:"entitlements,omitempty"`
	Groups            []UserGroup           `json:"groups,omitempty"`
	Ims               []UserIm              `json:"ims,omitempty"`
	Locale            string                `json:"locale,omitempty"`
	Name              *UserName             `json:"name,omitempty"`
	NickName          string                `json:"nickName,omitempty"`
	Password          string                `json:"password,omitempty"`
	PhoneNumbers      []UserPhoneNumber     `json:"phoneNumbers,omitempty"`
	Photos            []UserPhoto           `json:"photos,omitempty"`
	PreferredLanguage string                `json:"preferredLanguage,omitempty"`
	ProfileURL        string                `json:"profileUrl,omitempty"`
	Roles             []UserRole            `json:"roles,omitempty"`
	Timezone          string                `json:"timezone,omitempty"`
	Title             string                `json:"title,omitempty"`
	UserName          string                `json:"userName,omitempty"`
	UserType          string                `json:"userType,omitempty"`
	X509Certificates  []UserX509Certificate `json:"x509Certificates,omitempty"`

	EnterpriseUser *EnterpriseUser `json:"urn:ietf:params:scim:schemas:extension:enterprise:2.0:User,omitempty"`
}

func (u *User) ResourceSchemas() []string {
	if len(u.Schemas) > 0 {
		return u.Schemas
	}

	schemas := []string{SchemaUser}
	if u.EnterpriseUser != nil {
		schemas = append(schemas, SchemaEnterpriseUser)
	}

	return schemas
}

func (u *User) ResourceID() string {
	return u.ID
}

// A physical mailing address for this User. Canonical type values of 'work', 'home', and 'other'.
type UserAddress struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country,omitempty"`
	Type          string `json:"type,omitempty"`
	Primary       bool   `json:"primary,omitempty"`
}

// Email addresses for the user. The value SHOULD be canonicalized by the service provider, e.g., 'bjensen@example.com'
// instead of 'bjensen@EXAMPLE.COM'. Canonical type values of 'work', 'home', and 'other'.
type UserEmail struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// A list of entitlements for the User that represent a thing the User has.
type UserEntitlement struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// A list of groups to which the user belongs, either through direct membership, through nested groups, or dynamically
// calculated. The attribute is read-only on the server side.
type UserGroup struct {
	Value   string `json:"value,omitempty"`
	Ref     string `json:"$ref,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Instant messaging addresses for the User.
type UserIm struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// The components of the user's real name. Providers MAY return just the full name as a single string in the formatted
// sub-attribute, or they MAY return just the individual component attributes, or they MAY return both.
type UserName struct {
	Formatted       string `json:"formatted,omitempty"`
	FamilyName      string `json:"familyName,omitempty"`
	GivenName       string `json:"givenName,omitempty"`
	MiddleName      string `json:"middleName,omitempty"`
	HonorificPrefix string `json:"honorificPrefix,omitempty"`
	HonorificSuffix string `json:"honorificSuffix,omitempty"`
}

// Phone numbers for the User. The value SHOULD be canonicalized by the service provider according to the format
// in RFC 3966, e.g., 'tel:+1-201-555-0123'. Canonical type values of 'work', 'home', 'mobile', 'fax', 'pager'
// and 'other'.
type UserPhoneNumber struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// URLs of photos of the User.
type UserPhoto struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// A list of roles for the User that collectively represent who the User is, e.g., 'Student', 'Faculty'.
type UserRole struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// A list of certificates issued to the User.
type UserX509Certificate struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// EnterpriseUser holds the attributes of the enterprise User extension
// defined in RFC 7643 section 4.3.
type EnterpriseUser struct {
	CostCenter     string                 `json:"costCenter,omitempty"`
	Department     string                 `json:"department,omitempty"`
	Division       string                 `json:"division,omitempty"`
	EmployeeNumber string                 `json:"employeeNumber,omitempty"`
	Manager        *EnterpriseUserManager `json:"manager,omitempty"`
	Organization   string                 `json:"organization,omitempty"`
}

// The User's manager. A complex type that optionally allows service providers to represent organizational hierarchy
// by referencing the 'id' attribute of another User.
type EnterpriseUserManager struct {
	Value       string `json:"value,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}
